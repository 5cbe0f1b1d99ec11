package services

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TimeSlotService struct {
	db *gorm.DB
}

func NewTimeSlotService(db *gorm.DB) *TimeSlotService {
	return &TimeSlotService{db: db}
}

func findDay(db *gorm.DB, calendarID, dayID uuid.UUID) (*models.Day, error) {
	var day models.Day
	if err := db.Where("id = ? AND calendar_id = ?", dayID, calendarID).First(&day).Error; err != nil {
		return nil, notFoundAs(err, ErrDayNotFound)
	}
	return &day, nil
}

func findSlot(db *gorm.DB, dayID, id uuid.UUID) (*models.TimeSlot, error) {
	var slot models.TimeSlot
	if err := db.Where("id = ? AND day_id = ?", id, dayID).First(&slot).Error; err != nil {
		return nil, notFoundAs(err, ErrTimeSlotNotFound)
	}
	return &slot, nil
}

// Create proposes a window on a day. Only calendar members may propose.
func (s *TimeSlotService) Create(ctx context.Context, self, calendarID, dayID uuid.UUID, req *dto.CreateTimeSlotRequest) (*dto.TimeSlotResponse, error) {
	start, err := ParseClock(req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := ParseClock(req.EndTime)
	if err != nil {
		return nil, err
	}
	if start > end {
		return nil, ErrTimeOrder
	}

	db := s.db.WithContext(ctx)
	cal, err := loadCalendar(db, calendarID)
	if err != nil {
		return nil, err
	}
	day, err := findDay(db, cal.ID, dayID)
	if err != nil {
		return nil, err
	}
	ok, err := isMember(db, cal, self)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}

	slot := models.TimeSlot{DayID: day.ID, OwnerID: self, StartTime: start, EndTime: end}
	if err := db.Create(&slot).Error; err != nil {
		return nil, err
	}
	return s.present(db, &slot)
}

func (s *TimeSlotService) List(ctx context.Context, self, calendarID, dayID uuid.UUID) ([]dto.TimeSlotResponse, error) {
	db := s.db.WithContext(ctx)
	if _, err := visibleCalendar(db, calendarID, self); err != nil {
		return nil, err
	}
	day, err := findDay(db, calendarID, dayID)
	if err != nil {
		return nil, err
	}

	var slots []models.TimeSlot
	if err := db.Where("day_id = ?", day.ID).Order("start_time").Order("created_at").Find(&slots).Error; err != nil {
		return nil, err
	}
	ownerIDs := make([]uuid.UUID, 0, len(slots))
	for _, ts := range slots {
		ownerIDs = append(ownerIDs, ts.OwnerID)
	}
	users, err := usersByID(db, ownerIDs)
	if err != nil {
		return nil, err
	}

	out := make([]dto.TimeSlotResponse, 0, len(slots))
	for i := range slots {
		out = append(out, presentTimeSlot(&slots[i], users))
	}
	return out, nil
}

func (s *TimeSlotService) Get(ctx context.Context, self, calendarID, dayID, id uuid.UUID) (*dto.TimeSlotResponse, error) {
	db := s.db.WithContext(ctx)
	slot, err := s.lookup(db, false, self, calendarID, dayID, id)
	if err != nil {
		return nil, err
	}
	return s.present(db, slot)
}

// Update changes the supplied bounds of a slot owned by self.
func (s *TimeSlotService) Update(ctx context.Context, self, calendarID, dayID, id uuid.UUID, req *dto.UpdateTimeSlotRequest) (*dto.TimeSlotResponse, error) {
	var slot *models.TimeSlot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		slot, err = s.lookup(tx, true, self, calendarID, dayID, id)
		if err != nil {
			return err
		}
		if slot.OwnerID != self {
			return ErrNotSlotOwner
		}

		if req.StartTime != nil {
			if slot.StartTime, err = ParseClock(*req.StartTime); err != nil {
				return err
			}
		}
		if req.EndTime != nil {
			if slot.EndTime, err = ParseClock(*req.EndTime); err != nil {
				return err
			}
		}
		if slot.StartTime > slot.EndTime {
			return ErrTimeOrder
		}
		return tx.Model(slot).Updates(map[string]interface{}{
			"start_time": slot.StartTime,
			"end_time":   slot.EndTime,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.present(s.db.WithContext(ctx), slot)
}

func (s *TimeSlotService) Delete(ctx context.Context, self, calendarID, dayID, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := s.lookup(tx, true, self, calendarID, dayID, id)
		if err != nil {
			return err
		}
		if slot.OwnerID != self {
			return ErrNotSlotOwner
		}
		return tx.Where("id = ?", slot.ID).Delete(&models.TimeSlot{}).Error
	})
}

// lookup resolves a slot through its calendar and day, hiding calendars
// self cannot see. With lock set the slot row is locked for update.
func (s *TimeSlotService) lookup(db *gorm.DB, lock bool, self, calendarID, dayID, id uuid.UUID) (*models.TimeSlot, error) {
	if _, err := visibleCalendar(db, calendarID, self); err != nil {
		return nil, err
	}
	if _, err := findDay(db, calendarID, dayID); err != nil {
		return nil, err
	}
	if lock {
		db = forUpdate(db)
	}
	return findSlot(db, dayID, id)
}

func (s *TimeSlotService) present(db *gorm.DB, slot *models.TimeSlot) (*dto.TimeSlotResponse, error) {
	users, err := usersByID(db, []uuid.UUID{slot.OwnerID})
	if err != nil {
		return nil, err
	}
	out := presentTimeSlot(slot, users)
	return &out, nil
}

func presentTimeSlot(slot *models.TimeSlot, users map[uuid.UUID]models.User) dto.TimeSlotResponse {
	return dto.TimeSlotResponse{
		ID:            slot.ID,
		DayID:         slot.DayID,
		OwnerID:       slot.OwnerID,
		OwnerUsername: users[slot.OwnerID].Username,
		StartTime:     FormatClock(slot.StartTime),
		EndTime:       FormatClock(slot.EndTime),
	}
}
