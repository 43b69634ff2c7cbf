package coupon

import (
	"context"
	"sync"
	"time"

	"github.com/jackyeh168/order_settlement/src/internal/domain/coupon"
	"github.com/jackyeh168/order_settlement/src/internal/domain/member"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// ===========================
// 記憶體 Fakes
// ===========================

type fakeStore struct {
	mu        sync.Mutex
	programs  map[coupon.ProgramID]*coupon.CouponProgram
	templates map[coupon.TemplateID]*coupon.CouponTemplate
	issuances []*coupon.Issuance
	coupons   map[coupon.CouponID]*coupon.Coupon
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		programs:  map[coupon.ProgramID]*coupon.CouponProgram{},
		templates: map[coupon.TemplateID]*coupon.CouponTemplate{},
		coupons:   map[coupon.CouponID]*coupon.Coupon{},
	}
}

type fakePrograms struct{ s *fakeStore }

func (f fakePrograms) FindByIDForUpdate(tx shared.TransactionContext, id coupon.ProgramID) (*coupon.CouponProgram, error) {
	return f.FindByID(tx, id)
}

func (f fakePrograms) FindByID(_ shared.TransactionContext, id coupon.ProgramID) (*coupon.CouponProgram, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.programs[id]
	if !ok {
		return nil, coupon.ErrProgramNotFound
	}
	return p, nil
}

func (f fakePrograms) FindActiveByTrigger(_ shared.TransactionContext, t coupon.TriggerType) ([]*coupon.CouponProgram, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*coupon.CouponProgram
	for _, p := range f.s.programs {
		if p.TriggerType() == t && p.Status() == coupon.ProgramActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakePrograms) Create(_ shared.TransactionContext, p *coupon.CouponProgram) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.programs[p.ProgramID()] = p
	return nil
}

func (f fakePrograms) UpdateIssuedCount(shared.TransactionContext, *coupon.CouponProgram) error {
	return nil
}

type fakeTemplates struct{ s *fakeStore }

func (f fakeTemplates) Create(_ shared.TransactionContext, t *coupon.CouponTemplate) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.templates[t.TemplateID()] = t
	return nil
}

func (f fakeTemplates) FindByIDs(_ shared.TransactionContext, ids []coupon.TemplateID) (map[coupon.TemplateID]*coupon.CouponTemplate, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := map[coupon.TemplateID]*coupon.CouponTemplate{}
	for _, id := range ids {
		if t, ok := f.s.templates[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

type fakeIssuances struct{ s *fakeStore }

func (f fakeIssuances) Create(_ shared.TransactionContext, i *coupon.Issuance) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, e := range f.s.issuances {
		if e.ProgramID().Equals(i.ProgramID()) && e.UserID().Equals(i.UserID()) && e.OccurrenceKey() == i.OccurrenceKey() {
			return coupon.ErrDuplicateIssuance
		}
	}
	f.s.issuances = append(f.s.issuances, i)
	return nil
}

func (f fakeIssuances) CountForUser(_ shared.TransactionContext, tag string, userID coupon.UserID, since *time.Time) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	n := 0
	for _, e := range f.s.issuances {
		if e.CampaignTag() == tag && e.UserID().Equals(userID) && (since == nil || !e.IssuedAt().Before(*since)) {
			n++
		}
	}
	return n, nil
}

func (f fakeIssuances) Exists(_ shared.TransactionContext, programID coupon.ProgramID, userID coupon.UserID, key string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, e := range f.s.issuances {
		if e.ProgramID().Equals(programID) && e.UserID().Equals(userID) && e.OccurrenceKey() == key {
			return true, nil
		}
	}
	return false, nil
}

type fakeCoupons struct{ s *fakeStore }

func (f fakeCoupons) CreateBatch(_ shared.TransactionContext, cs []*coupon.Coupon) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, c := range cs {
		f.s.coupons[c.CouponID()] = c
	}
	return nil
}

func (f fakeCoupons) FindByIDForUpdate(_ shared.TransactionContext, id coupon.CouponID) (*coupon.Coupon, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.coupons[id]
	if !ok {
		return nil, coupon.ErrCouponNotFound
	}
	return c, nil
}

func (f fakeCoupons) FindByUser(_ shared.TransactionContext, userID coupon.UserID) ([]*coupon.Coupon, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*coupon.Coupon
	for _, c := range f.s.coupons {
		if c.UserID().Equals(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f fakeCoupons) MarkUsed(shared.TransactionContext, *coupon.Coupon) error {
	return nil
}

type fakeMembers struct {
	members []*member.Member
}

func (f *fakeMembers) Save(_ shared.TransactionContext, m *member.Member) error {
	f.members = append(f.members, m)
	return nil
}

func (f *fakeMembers) FindByMemberID(_ shared.TransactionContext, id member.MemberID) (*member.Member, error) {
	for _, m := range f.members {
		if m.MemberID().Equals(id) {
			return m, nil
		}
	}
	return nil, member.ErrMemberNotFound
}

func (f *fakeMembers) FindByEmail(_ shared.TransactionContext, email member.Email) (*member.Member, error) {
	for _, m := range f.members {
		if m.Email().Equals(email) {
			return m, nil
		}
	}
	return nil, member.ErrMemberNotFound
}

func (f *fakeMembers) ExistsByEmail(tx shared.TransactionContext, email member.Email) (bool, error) {
	_, err := f.FindByEmail(tx, email)
	return err == nil, nil
}

func (f *fakeMembers) FindActiveByBirthMonth(_ shared.TransactionContext, month time.Month) ([]*member.Member, error) {
	var out []*member.Member
	for _, m := range f.members {
		if m.IsActive() && m.HasBirthdayIn(month) {
			out = append(out, m)
		}
	}
	return out, nil
}

type passthroughTx struct{}

func (passthroughTx) InTransaction(_ context.Context, fn func(tx shared.TransactionContext) error) error {
	return fn(nil)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e shared.DomainEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

// recordingLocker 記錄加鎖的使用者；err 非 nil 時加鎖失敗
type recordingLocker struct {
	mu     sync.Mutex
	locked []string
	err    error
}

func (l *recordingLocker) LockUser(_ shared.TransactionContext, userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.locked = append(l.locked, userID)
	return nil
}

// harness 組裝所有 Use Case
type harness struct {
	store     *fakeStore
	publisher *recordingPublisher
	locker    *recordingLocker
	issue     *IssueProgramUseCase
	canIssue  *CanIssueProgramUseCase
	trigger   *IssueForTriggerUseCase
	redeem    *RedeemCouponUseCase
	now       time.Time
}

func newHarness(now time.Time) *harness {
	store := newFakeStore()
	publisher := &recordingPublisher{}
	locker := &recordingLocker{}
	clock := func() time.Time { return now }

	issue := NewIssueProgramUseCase(fakePrograms{store}, fakeTemplates{store}, fakeIssuances{store}, fakeCoupons{store}, passthroughTx{}, locker, publisher)
	issue.now = clock
	canIssue := NewCanIssueProgramUseCase(fakePrograms{store}, fakeIssuances{store})
	canIssue.now = clock
	redeem := NewRedeemCouponUseCase(fakeCoupons{store}, passthroughTx{})
	redeem.now = clock

	return &harness{
		store:     store,
		publisher: publisher,
		locker:    locker,
		issue:     issue,
		canIssue:  canIssue,
		trigger:   NewIssueForTriggerUseCase(fakePrograms{store}, issue),
		redeem:    redeem,
		now:       now,
	}
}

// addProgram 建立單一模板的活動並存入
func (h *harness) addProgram(trigger coupon.TriggerType, rule string, quantity, perUser int, total *int) *coupon.CouponProgram {
	days := 30
	template, err := coupon.NewCouponTemplate(coupon.NewTemplateID(), "NT$5 off", []byte(rule), &days)
	if err != nil {
		panic(err)
	}
	_ = fakeTemplates{h.store}.Create(nil, template)

	program, err := coupon.NewCouponProgram(
		string(trigger)+" program", "tag-"+coupon.NewProgramID().String(), trigger,
		[]coupon.ProgramItem{{TemplateID: template.TemplateID(), Quantity: quantity}},
		perUser, total, nil, nil,
	)
	if err != nil {
		panic(err)
	}
	_ = fakePrograms{h.store}.Create(nil, program)
	return program
}
