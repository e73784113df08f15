// Package policy описывает временные правила самообслуживания:
// крайний срок отмены доставки и окно смены категории.
package policy

import (
	"fmt"
	"time"

	"github.com/magabrotheeeer/foodtrack/internal/lib/workday"
)

// Clock: время суток с точностью до минуты.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock разбирает строку вида "07:30".
func ParseClock(s string) (Clock, error) {
	const op = "policy.ParseClock"
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Clock{}, fmt.Errorf("%s: %w", op, err)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c Clock) minutes() int { return c.Hour*60 + c.Minute }

func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// Policy хранит локацию сервиса и границы временных окон.
type Policy struct {
	loc       *time.Location
	cutoff    Clock
	editOpens Clock
}

// New создаёт политику. cutoff задаёт крайний срок отмены в день доставки,
// editOpens задаёт время, с которого до следующего cutoff разрешена смена категории.
func New(loc *time.Location, cutoff, editOpens Clock) *Policy {
	if loc == nil {
		loc = time.UTC
	}
	return &Policy{loc: loc, cutoff: cutoff, editOpens: editOpens}
}

// Load собирает политику из строковых настроек конфига.
func Load(timezone, cutoff, editOpens string) (*Policy, error) {
	const op = "policy.Load"
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c, err := ParseClock(cutoff)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	e, err := ParseClock(editOpens)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return New(loc, c, e), nil
}

// Location возвращает локацию сервиса.
func (p *Policy) Location() *time.Location { return p.loc }

// Cutoff возвращает крайний срок отмены.
func (p *Policy) Cutoff() Clock { return p.cutoff }

// EditOpens возвращает время открытия окна смены категории.
func (p *Policy) EditOpens() Clock { return p.editOpens }

// Today возвращает полночь текущего дня в локации сервиса.
func (p *Policy) Today(now time.Time) time.Time {
	return workday.Day(now.In(p.loc))
}

// ParseDate разбирает дату YYYY-MM-DD в локации сервиса.
func (p *Policy) ParseDate(s string) (time.Time, error) {
	return workday.ParseDate(s, p.loc)
}

// Deadline возвращает момент, после которого отменить доставку на date уже нельзя.
func (p *Policy) Deadline(date time.Time) time.Time {
	d := workday.Day(date.In(p.loc))
	return d.Add(time.Duration(p.cutoff.minutes()) * time.Minute)
}

// CutoffPassed сообщает, что крайний срок для date истёк.
func (p *Policy) CutoffPassed(date, now time.Time) bool {
	return !now.Before(p.Deadline(date))
}

// CanCancel сообщает, может ли пользователь сам отменить доставку на date.
func (p *Policy) CanCancel(date, now time.Time) bool {
	return !workday.IsWeekend(date.In(p.loc)) && !p.CutoffPassed(date, now)
}

// CancelTarget возвращает дату, которую предлагается отменить: сегодня до cutoff, иначе завтра.
func (p *Policy) CancelTarget(now time.Time) time.Time {
	today := p.Today(now)
	if p.CutoffPassed(today, now) {
		return today.AddDate(0, 0, 1)
	}
	return today
}

// CanEditCategory сообщает, открыто ли окно смены категории: с editOpens до cutoff следующего дня.
func (p *Policy) CanEditCategory(now time.Time) bool {
	local := now.In(p.loc)
	m := local.Hour()*60 + local.Minute()
	return m >= p.editOpens.minutes() || m < p.cutoff.minutes()
}
