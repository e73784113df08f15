// Package dashboard собирает отчёт администратора за месяц и выгружает его в CSV.
package dashboard

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/magabrotheeeer/foodtrack/internal/lib/accounting"
	"github.com/magabrotheeeer/foodtrack/internal/lib/apperr"
	"github.com/magabrotheeeer/foodtrack/internal/lib/policy"
	"github.com/magabrotheeeer/foodtrack/internal/lib/workday"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

// MonthLayout: формат месяца в запросах отчёта.
const MonthLayout = "2006-01"

// Store: чтение пользователей, переопределений и чёрного списка.
type Store interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListOverrides(ctx context.Context, from, to string) (map[string]models.OverrideSet, error)
	ListBlacklist(ctx context.Context) ([]models.BlacklistEntry, error)
}

// GlobalReader читает общие отмены из хранилища в обход кэша.
type GlobalReader interface {
	ReloadGlobalCancellations(ctx context.Context) (models.GlobalCancellations, error)
}

// Service строит отчёты.
type Service struct {
	store  Store
	global GlobalReader
	policy *policy.Policy
	log    *slog.Logger
	now    func() time.Time
}

// New создаёт Service. now может быть nil, тогда используется time.Now.
func New(store Store, global GlobalReader, p *policy.Policy, log *slog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, global: global, policy: p, log: log, now: now}
}

// Report строит отчёт за month (YYYY-MM) и статистику на selectedDate.
// Пустой month означает текущий месяц, пустая selectedDate означает сегодня,
// а в выходной ближайший рабочий день. Выходной в selectedDate даёт ErrPolicyViolation.
func (s *Service) Report(ctx context.Context, month, selectedDate string) (*models.Report, error) {
	const op = "dashboard.Report"

	today := s.policy.Today(s.now())
	m := workday.StartOfMonth(today)
	if month != "" {
		parsed, err := time.ParseInLocation(MonthLayout, month, s.policy.Location())
		if err != nil {
			return nil, apperr.Validation("invalid month %q", month)
		}
		m = parsed
	}
	selected := today
	if workday.IsWeekend(selected) {
		selected = workday.NextWorkingDay(selected)
	}
	if selectedDate != "" {
		d, err := s.policy.ParseDate(selectedDate)
		if err != nil {
			return nil, apperr.Validation("invalid date %q", selectedDate)
		}
		if workday.IsWeekend(d) {
			return nil, apperr.Policy("%s is a weekend, select a weekday", selectedDate)
		}
		selected = d
	}

	from, to := workday.StartOfMonth(m), workday.EndOfMonth(m)
	if selected.Before(from) {
		from = selected
	}
	if selected.After(to) {
		to = selected
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	overrides, err := s.store.ListOverrides(ctx, workday.FormatDate(from), workday.FormatDate(to))
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	global, err := s.global.ReloadGlobalCancellations(ctx)
	if err != nil {
		return nil, err
	}
	blacklist, err := s.store.ListBlacklist(ctx)
	if err != nil {
		return nil, apperr.Store(op, err)
	}

	in := accounting.Input{
		Users:        make([]models.UserBookings, 0, len(users)),
		Global:       global,
		Month:        m,
		Today:        today,
		SelectedDate: workday.FormatDate(selected),
	}
	for _, u := range users {
		in.Users = append(in.Users, models.UserBookings{User: u, Overrides: overrides[u.UUID]})
	}
	report := accounting.Aggregate(in)

	listed := make(map[string]bool, len(blacklist))
	for _, e := range blacklist {
		listed[e.UserUID] = true
	}
	for i := range report.Users {
		report.Users[i].Blacklisted = listed[report.Users[i].UUID]
	}

	s.log.Debug("report built", slog.String("month", report.Month), slog.Int("users", report.UserCount))
	return &report, nil
}

// ExportCSV выгружает отчёт за month в CSV.
func (s *Service) ExportCSV(ctx context.Context, month string) ([]byte, error) {
	const op = "dashboard.ExportCSV"

	report, err := s.Report(ctx, month, "")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	rows := [][]string{{"User", "Count", "Category", "Amount", "Locked", "Start Date"}}
	for _, u := range report.Users {
		rows = append(rows, []string{
			u.Name,
			strconv.Itoa(u.Count),
			string(u.Category.Normalize()),
			strconv.Itoa(u.Amount),
			strconv.FormatBool(u.Locked),
			u.StartDate,
		})
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}
