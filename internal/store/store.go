package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/mysticvn/boitoan/internal/config"
	"github.com/mysticvn/boitoan/internal/divination"
)

type Store struct {
	DB *gorm.DB
}

func Open(cfg config.DatabaseConfig) (*Store, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username, cfg.Password, cfg.Address, cfg.Database)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := db.AutoMigrate(&User{}, &Partner{}, &Breakup{}, &ChatMessage{}, &TarotReading{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{DB: db}, nil
}

// --- Users ---

func (s *Store) CreateUser(user *User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return s.DB.Create(user).Error
}

func (s *Store) GetUserByEmail(email string) (*User, error) {
	var user User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID returns (nil, nil) when no such user exists.
func (s *Store) GetUserByID(id string) (*User, error) {
	var user User
	err := s.DB.First(&user, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile writes only the fields the caller supplied; omitted fields
// keep their stored values.
func (s *Store) UpdateProfile(userID string, name string, birthDate *time.Time, birthTime, birthPlace string) (*User, error) {
	updates := map[string]any{}
	if name != "" {
		updates["name"] = name
	}
	if birthDate != nil {
		updates["birth_date"] = birthDate
	}
	if birthTime != "" {
		updates["birth_time"] = birthTime
	}
	if birthPlace != "" {
		updates["birth_place"] = birthPlace
	}
	if len(updates) > 0 {
		if err := s.DB.Model(&User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetUserByID(userID)
}

// --- Partner ---

func (s *Store) GetPartner(userID string) (*Partner, error) {
	var partner Partner
	err := s.DB.Where("user_id = ?", userID).First(&partner).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

func (s *Store) CreatePartner(partner *Partner) error {
	if partner.ID == "" {
		partner.ID = uuid.New().String()
	}
	return s.DB.Create(partner).Error
}

func (s *Store) UpdatePartner(partner *Partner) error {
	return s.DB.Save(partner).Error
}

// DeletePartnerWithBreakup removes the partner row and records the breakup in
// the same transaction. The breakup auto-expires after thirty days.
func (s *Store) DeletePartnerWithBreakup(userID string, partner *Partner, now time.Time) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		breakup := &Breakup{
			ID:              uuid.New().String(),
			UserID:          userID,
			PartnerName:     partner.Name,
			BreakupDate:     now,
			AutoDeleteDate:  now.Add(30 * 24 * time.Hour),
			WeeklyCheckDone: datatypes.JSON([]byte("[]")),
		}
		if err := tx.Create(breakup).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&Partner{}).Error
	})
}

// RestorePartnerFromBreakup recreates the partner row and drops the breakup
// record atomically.
func (s *Store) RestorePartnerFromBreakup(userID string, partner *Partner, breakupID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if partner.ID == "" {
			partner.ID = uuid.New().String()
		}
		if err := tx.Create(partner).Error; err != nil {
			return err
		}
		return tx.Delete(&Breakup{}, "id = ?", breakupID).Error
	})
}

// --- Breakup ---

func (s *Store) GetActiveBreakup(userID string, now time.Time) (*Breakup, error) {
	var breakup Breakup
	err := s.DB.Where("user_id = ? AND auto_delete_date >= ?", userID, now).
		Order("breakup_date DESC").First(&breakup).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &breakup, nil
}

func (s *Store) UpdateBreakupWeeklyCheck(breakupID string, weeklyCheckDone []string) (*Breakup, error) {
	raw, err := json.Marshal(weeklyCheckDone)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(&Breakup{}).Where("id = ?", breakupID).
		Update("weekly_check_done", datatypes.JSON(raw)).Error; err != nil {
		return nil, err
	}
	var breakup Breakup
	if err := s.DB.First(&breakup, "id = ?", breakupID).Error; err != nil {
		return nil, err
	}
	return &breakup, nil
}

func (s *Store) DeleteBreakup(breakupID string) error {
	return s.DB.Delete(&Breakup{}, "id = ?", breakupID).Error
}

func (s *Store) DeleteExpiredBreakups(userID string, now time.Time) (int64, error) {
	res := s.DB.Where("user_id = ? AND auto_delete_date < ?", userID, now).Delete(&Breakup{})
	return res.RowsAffected, res.Error
}

// --- Chat ---

func (s *Store) AppendChatMessage(userID, role, content string) error {
	return s.DB.Create(&ChatMessage{UserID: userID, Role: role, Content: content}).Error
}

// RecentChatMessages returns the latest n messages in chronological order.
func (s *Store) RecentChatMessages(userID string, n int) ([]ChatMessage, error) {
	var messages []ChatMessage
	if err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(n).Find(&messages).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *Store) ChatHistory(userID string) ([]ChatMessage, error) {
	var messages []ChatMessage
	err := s.DB.Where("user_id = ?", userID).Order("created_at ASC").Find(&messages).Error
	return messages, err
}

// --- Tarot ---

func (s *Store) CreateTarotReading(userID, question string, cardsDrawn []string, interpretation string) (*TarotReading, error) {
	raw, err := json.Marshal(cardsDrawn)
	if err != nil {
		return nil, err
	}
	reading := &TarotReading{
		ID:             uuid.New().String(),
		UserID:         userID,
		Question:       question,
		CardsDrawn:     datatypes.JSON(raw),
		Interpretation: interpretation,
	}
	if err := s.DB.Create(reading).Error; err != nil {
		return nil, err
	}
	return reading, nil
}

// --- User context assembly ---

const dateLayout = "2006-01-02"

// LoadUserContext builds the request-scoped profile snapshot the prompt
// pipeline consumes from the persisted user, partner and breakup rows.
func (s *Store) LoadUserContext(userID string, now time.Time) (divination.UserContext, error) {
	user, err := s.GetUserByID(userID)
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
		uc.BirthDate = user.BirthDate.Format(dateLayout)
	}

	partner, err := s.GetPartner(userID)
	if err != nil {
		return divination.UserContext{}, err
	}
	if partner != nil {
		uc.HasPartner = true
		uc.PartnerName = partner.Name
		info := &divination.PartnerInfo{
			Name:         partner.Name,
			BirthTime:    partner.BirthTime,
			BirthPlace:   partner.BirthPlace,
			Relationship: partner.Relationship,
			StartDate:    partner.StartDate.Format(dateLayout),
		}
		if partner.BirthDate != nil {
			info.BirthDate = partner.BirthDate.Format(dateLayout)
		}
		uc.Partner = info
	}

	breakup, err := s.GetActiveBreakup(userID, now)
	if err != nil {
		return divination.UserContext{}, err
	}
	if breakup != nil {
		uc.IsInBreakup = true
		if uc.PartnerName == "" {
			uc.PartnerName = breakup.PartnerName
		}
		uc.Breakup = &divination.BreakupInfo{
			PartnerName:    breakup.PartnerName,
			BreakupDate:    breakup.BreakupDate.Format(dateLayout),
			AutoDeleteDate: breakup.AutoDeleteDate.Format(dateLayout),
		}
	}

	return uc, nil
}
