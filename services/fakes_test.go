package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/ye11ow-banana/main-be/models"
	"github.com/ye11ow-banana/main-be/repositories"
	"github.com/ye11ow-banana/main-be/utils"
)

// trigramSimilarity mirrors pg_trgm's similarity(): words are padded with
// two leading spaces and one trailing, then trigram sets are compared.
func trigramSimilarity(a, b string) float64 {
	ta, tb := trigrams(a), trigrams(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 0
	}
	common := 0
	for g := range ta {
		if tb[g] {
			common++
		}
	}
	return float64(common) / float64(len(ta)+len(tb)-common)
}

func trigrams(s string) map[string]bool {
	out := map[string]bool{}
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		r := []rune("  " + w + " ")
		for i := 0; i+3 <= len(r); i++ {
			out[string(r[i:i+3])] = true
		}
	}
	return out
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur := make([]int, len(rb)+1)
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev = cur
	}
	return prev[len(rb)]
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeProductStore struct {
	mu        sync.Mutex
	products  []models.Product
	createErr error
	queryErr  error
}

func (s *fakeProductStore) add(name string, proteins, fats, carbs, calories string) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := models.Product{
		ID:       uuid.New(),
		Name:     name,
		Proteins: dec(proteins),
		Fats:     dec(fats),
		Carbs:    dec(carbs),
		Calories: dec(calories),
	}
	s.products = append(s.products, p)
	return p
}

func (s *fakeProductStore) TrigramCandidates(_ context.Context, query string, minSimilarity float64, limit int) ([]repositories.ProductCandidate, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repositories.ProductCandidate
	for _, p := range s.products {
		name := strings.ToLower(p.Name)
		sim := trigramSimilarity(name, query)
		if sim < minSimilarity {
			continue
		}
		out = append(out, repositories.ProductCandidate{Product: p, Similarity: sim, Distance: levenshtein(name, query)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Product.ID.String() < out[j].Product.ID.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeProductStore) GetByIDs(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Product
	for _, p := range s.products {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeProductStore) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *fakeProductStore) Create(_ context.Context, p *models.Product) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.products {
		if existing.Name == p.Name {
			return repositories.ErrDuplicate
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.products = append(s.products, *p)
	return nil
}

func (s *fakeProductStore) Update(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, existing := range s.products {
		if existing.ID == p.ID {
			idx = i
		} else if existing.Name == p.Name {
			return repositories.ErrDuplicate
		}
	}
	if idx < 0 {
		return repositories.ErrNotFound
	}
	s.products[idx] = *p
	return nil
}

func (s *fakeProductStore) Search(_ context.Context, q string, p utils.Pagination) ([]models.Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var hits []models.Product
	for _, prod := range s.products {
		if strings.Contains(strings.ToLower(prod.Name), strings.ToLower(q)) {
			hits = append(hits, prod)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Name < hits[j].Name })
	total := int64(len(hits))
	start := min(p.Offset(), len(hits))
	end := min(start+p.Limit(), len(hits))
	return hits[start:end], total, nil
}

// fakeDayStore keeps days in memory. Transactions snapshot state and
// restore it when fn fails.
type fakeDayStore struct {
	mu       sync.Mutex
	days     map[uuid.UUID]*models.Day
	products map[[2]uuid.UUID]int

	lookups     int
	failUpsert  error
	failIncr    error
	raceOnFirst *models.Day // inserted behind the caller's back on first CreateIfAbsent
}

func newFakeDayStore() *fakeDayStore {
	return &fakeDayStore{days: map[uuid.UUID]*models.Day{}, products: map[[2]uuid.UUID]int{}}
}

func (s *fakeDayStore) dayFor(userID uuid.UUID, date time.Time) *models.Day {
	date = utils.DateOnly(date)
	for _, d := range s.days {
		if d.UserID == userID && d.Date.Equal(date) {
			return d
		}
	}
	return nil
}

func (s *fakeDayStore) Transaction(ctx context.Context, fn func(tx repositories.DayWriter) error) error {
	s.mu.Lock()
	days := map[uuid.UUID]models.Day{}
	for id, d := range s.days {
		days[id] = *d
	}
	products := map[[2]uuid.UUID]int{}
	for k, v := range s.products {
		products[k] = v
	}
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.days = map[uuid.UUID]*models.Day{}
		for id, d := range days {
			d := d
			s.days[id] = &d
		}
		s.products = products
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *fakeDayStore) GetByDate(_ context.Context, userID uuid.UUID, date time.Time) (*models.Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	if d := s.dayFor(userID, date); d != nil {
		cp := *d
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *fakeDayStore) CreateIfAbsent(_ context.Context, day *models.Day) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raceOnFirst != nil {
		d := *s.raceOnFirst
		s.raceOnFirst = nil
		s.days[d.ID] = &d
	}
	day.Date = utils.DateOnly(day.Date)
	if s.dayFor(day.UserID, day.Date) != nil {
		return false, nil
	}
	if day.ID == uuid.Nil {
		day.ID = uuid.New()
	}
	cp := *day
	s.days[day.ID] = &cp
	return true, nil
}

func (s *fakeDayStore) IncrementTotals(_ context.Context, dayID uuid.UUID, delta models.DayTotals) error {
	if s.failIncr != nil {
		return s.failIncr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.days[dayID]
	if !ok {
		return repositories.ErrNotFound
	}
	d.TotalProteins = d.TotalProteins.Add(delta.Proteins)
	d.TotalFats = d.TotalFats.Add(delta.Fats)
	d.TotalCarbs = d.TotalCarbs.Add(delta.Carbs)
	d.TotalCalories = d.TotalCalories.Add(delta.Calories)
	d.AdditionalCalories = d.AdditionalCalories.Add(delta.AdditionalCalories)
	return nil
}

func (s *fakeDayStore) AddProducts(_ context.Context, rows []models.DayProduct) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		k := [2]uuid.UUID{r.DayID, r.ProductID}
		if _, ok := s.products[k]; ok {
			return repositories.ErrDuplicate
		}
		s.products[k] = r.Weight
	}
	return nil
}

func (s *fakeDayStore) UpsertProducts(_ context.Context, rows []models.DayProduct) error {
	if s.failUpsert != nil {
		return s.failUpsert
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.products[[2]uuid.UUID{r.DayID, r.ProductID}] += r.Weight
	}
	return nil
}

func (s *fakeDayStore) GetByID(_ context.Context, id uuid.UUID) (*models.Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.days[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *fakeDayStore) userDays(userID uuid.UUID) []models.Day {
	var out []models.Day
	for _, d := range s.days {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (s *fakeDayStore) List(_ context.Context, userID uuid.UUID, f repositories.DayFilter, p utils.Pagination) ([]models.Day, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Day
	for _, d := range s.userDays(userID) {
		if (!f.Start.IsZero() && d.Date.Before(f.Start)) || (!f.End.IsZero() && d.Date.After(f.End)) {
			continue
		}
		out = append(out, d)
	}
	if f.SortBy != repositories.SortOldest {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	total := int64(len(out))
	start := min(p.Offset(), len(out))
	end := min(start+p.Limit(), len(out))
	return out[start:end], total, nil
}

func (s *fakeDayStore) ProductsForDays(_ context.Context, dayIDs []uuid.UUID) ([]models.DayProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DayProduct
	for _, id := range dayIDs {
		for k, w := range s.products {
			if k[0] == id {
				out = append(out, models.DayProduct{DayID: k[0], ProductID: k[1], Weight: w})
			}
		}
	}
	return out, nil
}

func (s *fakeDayStore) FirstAndLast(_ context.Context, userID uuid.UUID) (*models.Day, *models.Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	days := s.userDays(userID)
	if len(days) == 0 {
		return nil, nil, repositories.ErrNotFound
	}
	return &days[0], &days[len(days)-1], nil
}

func (s *fakeDayStore) ListForUser(_ context.Context, userID uuid.UUID) ([]models.Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userDays(userID), nil
}

func (s *fakeDayStore) UpdateMeasurements(_ context.Context, days []models.Day) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range days {
		stored, ok := s.days[d.ID]
		if !ok {
			return repositories.ErrNotFound
		}
		stored.BodyWeight, stored.BodyFat, stored.Trend = d.BodyWeight, d.BodyFat, d.Trend
	}
	return nil
}

func (s *fakeDayStore) WeightTrend(_ context.Context, userID uuid.UUID, start, end time.Time) ([]repositories.TrendPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repositories.TrendPoint
	for _, d := range s.userDays(userID) {
		if d.Trend.Valid && !d.Date.Before(start) && !d.Date.After(end) {
			out = append(out, repositories.TrendPoint{Date: d.Date, Value: d.Trend.Decimal})
		}
	}
	return out, nil
}

func (s *fakeDayStore) CalorieTrend(_ context.Context, userID uuid.UUID, start, end time.Time) ([]repositories.TrendPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repositories.TrendPoint
	for _, d := range s.userDays(userID) {
		if !d.Date.Before(start) && !d.Date.After(end) {
			out = append(out, repositories.TrendPoint{Date: d.Date, Value: d.TotalCalories})
		}
	}
	return out, nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users []*models.User
	codes map[uuid.UUID]*models.VerificationCode
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{codes: map[uuid.UUID]*models.VerificationCode{}}
}

func (s *fakeUserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return repositories.ErrDuplicate
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	s.users = append(s.users, &cp)
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *fakeUserStore) GetByUsernameOrEmail(_ context.Context, login string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == login || u.Email == login {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *fakeUserStore) ListVerified(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if u.IsVerified {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *fakeUserStore) SetAvatarURL(_ context.Context, id uuid.UUID, url *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			u.AvatarURL = url
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (s *fakeUserStore) UpsertVerificationCode(_ context.Context, userID uuid.UUID, code int, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if vc, ok := s.codes[userID]; ok {
		vc.Code, vc.ExpiredAt = code, expiresAt
		return nil
	}
	s.codes[userID] = &models.VerificationCode{ID: uuid.New(), UserID: userID, Code: code, ExpiredAt: expiresAt}
	return nil
}

func (s *fakeUserStore) GetVerificationCode(_ context.Context, userID uuid.UUID) (*models.VerificationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if vc, ok := s.codes[userID]; ok {
		cp := *vc
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *fakeUserStore) Verify(_ context.Context, userID uuid.UUID, codeID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == userID {
			u.IsVerified = true
		}
	}
	delete(s.codes, userID)
	return nil
}
