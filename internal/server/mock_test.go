package server

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mysticvn/boitoan/internal/divination"
	"github.com/mysticvn/boitoan/internal/store"
	"github.com/mysticvn/boitoan/internal/wiki"
)

type mockLLM struct {
	Response string
	Err      error
	Prompts  []string
}

func (m *mockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

type stubFetcher struct {
	Refs map[string]*wiki.Reference
}

func (s *stubFetcher) FetchMany(ctx context.Context, terms []string) []*wiki.Reference {
	refs := make([]*wiki.Reference, len(terms))
	for i, term := range terms {
		refs[i] = s.Refs[term]
	}
	return refs
}

// fakeStore is an in-memory stand-in for the gorm store.
type fakeStore struct {
	users    map[string]*store.User
	byEmail  map[string]string
	partners map[string]*store.Partner
	breakups map[string]*store.Breakup
	chats    map[string][]store.ChatMessage
	readings []*store.TarotReading
	chatSeq  uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[string]*store.User{},
		byEmail:  map[string]string{},
		partners: map[string]*store.Partner{},
		breakups: map[string]*store.Breakup{},
		chats:    map[string][]store.ChatMessage{},
	}
}

func (f *fakeStore) CreateUser(user *store.User) error {
	if _, exists := f.byEmail[user.Email]; exists {
		return fmt.Errorf("duplicate email %s", user.Email)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	f.users[user.ID] = user
	f.byEmail[user.Email] = user.ID
	return nil
}

func (f *fakeStore) GetUserByEmail(email string) (*store.User, error) {
	id, ok := f.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("user %s not found", email)
	}
	return f.users[id], nil
}

func (f *fakeStore) GetUserByID(id string) (*store.User, error) {
	return f.users[id], nil
}

func (f *fakeStore) UpdateProfile(userID, name string, birthDate *time.Time, birthTime, birthPlace string) (*store.User, error) {
	user, err := f.GetUserByID(userID)
	if err != nil || user == nil {
		return nil, err
	}
	if name != "" {
		user.Name = name
	}
	if birthDate != nil {
		user.BirthDate = birthDate
	}
	if birthTime != "" {
		user.BirthTime = birthTime
	}
	if birthPlace != "" {
		user.BirthPlace = birthPlace
	}
	return user, nil
}

func (f *fakeStore) GetPartner(userID string) (*store.Partner, error) {
	return f.partners[userID], nil
}

func (f *fakeStore) CreatePartner(partner *store.Partner) error {
	if partner.ID == "" {
		partner.ID = uuid.New().String()
	}
	f.partners[partner.UserID] = partner
	return nil
}

func (f *fakeStore) UpdatePartner(partner *store.Partner) error {
	f.partners[partner.UserID] = partner
	return nil
}

func (f *fakeStore) DeletePartnerWithBreakup(userID string, partner *store.Partner, now time.Time) error {
	breakup := &store.Breakup{
		ID:             uuid.New().String(),
		UserID:         userID,
		PartnerName:    partner.Name,
		BreakupDate:    now,
		AutoDeleteDate: now.Add(30 * 24 * time.Hour),
	}
	f.breakups[breakup.ID] = breakup
	delete(f.partners, userID)
	return nil
}

func (f *fakeStore) RestorePartnerFromBreakup(userID string, partner *store.Partner, breakupID string) error {
	if partner.ID == "" {
		partner.ID = uuid.New().String()
	}
	f.partners[userID] = partner
	delete(f.breakups, breakupID)
	return nil
}

func (f *fakeStore) GetActiveBreakup(userID string, now time.Time) (*store.Breakup, error) {
	var latest *store.Breakup
	for _, b := range f.breakups {
		if b.UserID != userID || b.AutoDeleteDate.Before(now) {
			continue
		}
		if latest == nil || b.BreakupDate.After(latest.BreakupDate) {
			latest = b
		}
	}
	return latest, nil
}

func (f *fakeStore) UpdateBreakupWeeklyCheck(breakupID string, weeklyCheckDone []string) (*store.Breakup, error) {
	b, ok := f.breakups[breakupID]
	if !ok {
		return nil, fmt.Errorf("breakup %s not found", breakupID)
	}
	raw := "["
	for i, w := range weeklyCheckDone {
		if i > 0 {
			raw += ","
		}
		raw += fmt.Sprintf("%q", w)
	}
	raw += "]"
	b.WeeklyCheckDone = []byte(raw)
	return b, nil
}

func (f *fakeStore) DeleteBreakup(breakupID string) error {
	delete(f.breakups, breakupID)
	return nil
}

func (f *fakeStore) DeleteExpiredBreakups(userID string, now time.Time) (int64, error) {
	var n int64
	for id, b := range f.breakups {
		if b.UserID == userID && b.AutoDeleteDate.Before(now) {
			delete(f.breakups, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) AppendChatMessage(userID, role, content string) error {
	f.chatSeq++
	f.chats[userID] = append(f.chats[userID], store.ChatMessage{
		ID:        f.chatSeq,
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Unix(int64(f.chatSeq), 0),
	})
	return nil
}

func (f *fakeStore) RecentChatMessages(userID string, n int) ([]store.ChatMessage, error) {
	msgs := f.chats[userID]
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return msgs, nil
}

func (f *fakeStore) ChatHistory(userID string) ([]store.ChatMessage, error) {
	return f.chats[userID], nil
}

func (f *fakeStore) CreateTarotReading(userID, question string, cardsDrawn []string, interpretation string) (*store.TarotReading, error) {
	reading := &store.TarotReading{
		ID:             uuid.New().String(),
		UserID:         userID,
		Question:       question,
		Interpretation: interpretation,
	}
	f.readings = append(f.readings, reading)
	return reading, nil
}

func (f *fakeStore) LoadUserContext(userID string, now time.Time) (divination.UserContext, error) {
	user, err := f.GetUserByID(userID)
	if err != nil {
		return divination.UserContext{}, err
	}
	if user == nil {
		return divination.UserContext{}, nil
	}

	uc := divination.UserContext{
		Name:       user.Name,
		BirthTime:  user.BirthTime,
		BirthPlace: user.BirthPlace,
	}
	if user.BirthDate != nil {
		uc.BirthDate = user.BirthDate.Format("2006-01-02")
	}

	if partner := f.partners[userID]; partner != nil {
		uc.HasPartner = true
		uc.PartnerName = partner.Name
		uc.Partner = &divination.PartnerInfo{Name: partner.Name, Relationship: partner.Relationship}
	}

	breakup, _ := f.GetActiveBreakup(userID, now)
	if breakup != nil {
		uc.IsInBreakup = true
		if uc.PartnerName == "" {
			uc.PartnerName = breakup.PartnerName
		}
		uc.Breakup = &divination.BreakupInfo{
			PartnerName: breakup.PartnerName,
			BreakupDate: breakup.BreakupDate.Format("2006-01-02"),
		}
	}

	return uc, nil
}
