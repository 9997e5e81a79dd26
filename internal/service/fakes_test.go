package service

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/glebk/retro-bot/internal/domain"
	"github.com/glebk/retro-bot/internal/schedule"
)

var kst = time.FixedZone("KST", 9*60*60)

type fakeRetroRepo struct {
	nextID    int64
	retros    map[int64]*domain.Retrospective
	createErr error
	checkErr  error
}

func newFakeRetroRepo() *fakeRetroRepo {
	return &fakeRetroRepo{retros: make(map[int64]*domain.Retrospective)}
}

func (f *fakeRetroRepo) Create(retro *domain.Retrospective) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, r := range f.retros {
		if r.UserID == retro.UserID && r.SessionLabel == retro.SessionLabel {
			return domain.ErrDuplicate
		}
	}
	f.nextID++
	retro.ID = f.nextID
	retro.CreatedAt = time.Now()
	copied := *retro
	f.retros[retro.ID] = &copied
	return nil
}

func (f *fakeRetroRepo) GetByID(id int64) (*domain.Retrospective, error) {
	r, ok := f.retros[id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRetroRepo) sorted(match func(*domain.Retrospective) bool) []*domain.Retrospective {
	var out []*domain.Retrospective
	for _, r := range f.retros {
		if match(r) {
			copied := *r
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (f *fakeRetroRepo) GetByUser(userID int64) ([]*domain.Retrospective, error) {
	return f.sorted(func(r *domain.Retrospective) bool { return r.UserID == userID }), nil
}

func (f *fakeRetroRepo) HasSubmitted(userID int64, label string) (bool, error) {
	if f.checkErr != nil {
		return false, f.checkErr
	}
	for _, r := range f.retros {
		if r.UserID == userID && r.SessionLabel == label {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRetroRepo) SubmittedLabels(userID int64) (map[string]bool, error) {
	labels := make(map[string]bool)
	for _, r := range f.retros {
		if r.UserID == userID {
			labels[r.SessionLabel] = true
		}
	}
	return labels, nil
}

func (f *fakeRetroRepo) Update(retro *domain.Retrospective) error {
	if _, ok := f.retros[retro.ID]; !ok {
		return errors.New("no rows")
	}
	copied := *retro
	f.retros[retro.ID] = &copied
	return nil
}

func (f *fakeRetroRepo) Delete(id int64) (bool, error) {
	if _, ok := f.retros[id]; !ok {
		return false, nil
	}
	delete(f.retros, id)
	return true, nil
}

func (f *fakeRetroRepo) GetLatest(limit int) ([]*domain.Retrospective, error) {
	out := f.sorted(func(*domain.Retrospective) bool { return true })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeDraftRepo struct {
	drafts map[int64]*domain.Draft
}

func newFakeDraftRepo() *fakeDraftRepo {
	return &fakeDraftRepo{drafts: make(map[int64]*domain.Draft)}
}

func (f *fakeDraftRepo) Save(d *domain.Draft) error {
	copied := *d
	f.drafts[d.UserID] = &copied
	return nil
}

func (f *fakeDraftRepo) Get(userID int64) (*domain.Draft, error) {
	return f.drafts[userID], nil
}

func (f *fakeDraftRepo) Delete(userID int64) error {
	delete(f.drafts, userID)
	return nil
}

type fakeMemberRepo struct {
	members map[int64]*domain.Member
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[int64]*domain.Member)}
}

func (f *fakeMemberRepo) Upsert(m *domain.Member) error {
	copied := *m
	f.members[m.ID] = &copied
	return nil
}

func (f *fakeMemberRepo) GetByID(id int64) (*domain.Member, error) {
	return f.members[id], nil
}

func (f *fakeMemberRepo) GetByIDs(ids []int64) (map[int64]*domain.Member, error) {
	out := make(map[int64]*domain.Member)
	for _, id := range ids {
		if m, ok := f.members[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

type fakePublisher struct {
	nextMessage int
	published   []*domain.Retrospective
	retracted   []int
	publishErr  error
}

func (p *fakePublisher) Publish(retro *domain.Retrospective) (int, error) {
	if p.publishErr != nil {
		return 0, p.publishErr
	}
	p.nextMessage++
	p.published = append(p.published, retro)
	return p.nextMessage, nil
}

func (p *fakePublisher) Retract(chatID int64, messageID int) error {
	p.retracted = append(p.retracted, messageID)
	return nil
}

type fixture struct {
	svc     *RetroService
	retros  *fakeRetroRepo
	drafts  *fakeDraftRepo
	members *fakeMemberRepo
	now     time.Time
}

// newFixture builds a service over a four-session schedule:
// prep (05-01), 0 (05-13), 1 (05-20), 1 (05-27), all at 05:00 KST.
func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	sched, err := schedule.New([]schedule.Entry{
		{Deadline: time.Date(2025, 5, 1, 5, 0, 0, 0, kst), Label: "prep"},
		{Deadline: time.Date(2025, 5, 13, 5, 0, 0, 0, kst), Label: "0"},
		{Deadline: time.Date(2025, 5, 20, 5, 0, 0, 0, kst), Label: "1"},
		{Deadline: time.Date(2025, 5, 27, 5, 0, 0, 0, kst), Label: "1"},
	}, kst, 1)
	if err != nil {
		t.Fatalf("schedule.New() returned error: %v", err)
	}

	f := &fixture{
		retros:  newFakeRetroRepo(),
		drafts:  newFakeDraftRepo(),
		members: newFakeMemberRepo(),
		now:     now,
	}
	f.svc = NewRetroService(sched, f.retros, f.drafts, f.members, []int64{99},
		WithClock(func() time.Time { return f.now }))
	return f
}

func validAnswers() Answers {
	score := 6
	return Answers{
		GoodPoints:    "shipped the parser",
		Improvements:  "too many meetings",
		Learnings:     "table driven tests",
		ActionItem:    "block focus time",
		EmotionScore:  &score,
		EmotionReason: "tired but happy",
	}
}
