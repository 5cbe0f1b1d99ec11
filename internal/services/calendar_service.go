package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/ics"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CalendarService struct {
	db       *gorm.DB
	metrics  *metrics.Metrics
	pageSize int
	loc      *time.Location
}

func NewCalendarService(db *gorm.DB, cfg *config.Config, m *metrics.Metrics) *CalendarService {
	return &CalendarService{
		db:       db,
		metrics:  m,
		pageSize: cfg.PageSize,
		loc:      cfg.Location(),
	}
}

// dayInput is a validated entry of a requested day set.
type dayInput struct {
	id      *uuid.UUID
	date    datatypes.Date
	ranking int
}

func parseDays(days []dto.DayRequest) ([]dayInput, error) {
	if len(days) == 0 {
		return nil, ErrDaysRequired
	}
	out := make([]dayInput, 0, len(days))
	rankings := make(map[int]bool, len(days))
	ids := make(map[uuid.UUID]bool, len(days))
	for _, d := range days {
		if d.Ranking == nil {
			return nil, ErrDaysRequired
		}
		date, err := ParseDate(d.Date)
		if err != nil {
			return nil, err
		}
		if rankings[*d.Ranking] {
			return nil, ErrDuplicateRanking
		}
		rankings[*d.Ranking] = true
		if d.ID != nil {
			if ids[*d.ID] {
				return nil, ErrDuplicateDay
			}
			ids[*d.ID] = true
		}
		out = append(out, dayInput{id: d.ID, date: date, ranking: *d.Ranking})
	}
	return out, nil
}

func (s *CalendarService) Create(ctx context.Context, creator uuid.UUID, req *dto.CreateCalendarRequest) (*dto.CalendarResponse, error) {
	days, err := parseDays(req.Days)
	if err != nil {
		return nil, err
	}

	cal := models.Calendar{
		CreatorID:   creator,
		Title:       req.Title,
		Description: req.Description,
	}
	var joined int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&cal).Error; err != nil {
			return err
		}
		rows := make([]models.Day, 0, len(days))
		for _, d := range days {
			rows = append(rows, models.Day{CalendarID: cal.ID, Date: d.date, Ranking: d.ranking})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return duplicateAs(err, ErrDuplicateRanking)
		}
		added, err := addInitial(tx, &cal, req.Participants)
		joined = len(added)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("calendar created", "action", "calendar.create", "user_id", creator.String(), "calendar_id", cal.ID.String())
	for i := 0; i < joined; i++ {
		s.metrics.ObserveTransition("participant", "joined")
	}
	return s.present(s.db.WithContext(ctx), &cal)
}

// List returns the calendars self created or participates in, most recently
// updated first.
func (s *CalendarService) List(ctx context.Context, self uuid.UUID, page int) (*dto.CalendarListResponse, error) {
	if page < 1 {
		page = 1
	}
	db := s.db.WithContext(ctx)
	memberOf := db.Model(&models.Participant{}).Select("calendar_id").Where("user_id = ?", self)
	query := db.Model(&models.Calendar{}).Where("creator_id = ? OR id IN (?)", self, memberOf).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var cals []models.Calendar
	if err := query.Order("updated_at DESC").Order("id").
		Limit(s.pageSize).Offset((page - 1) * s.pageSize).
		Find(&cals).Error; err != nil {
		return nil, err
	}

	results, err := presentCalendars(db, cals)
	if err != nil {
		return nil, err
	}
	return &dto.CalendarListResponse{
		Count:    total,
		Page:     page,
		PageSize: s.pageSize,
		Results:  results,
	}, nil
}

func (s *CalendarService) Get(ctx context.Context, self, id uuid.UUID) (*dto.CalendarResponse, error) {
	db := s.db.WithContext(ctx)
	cal, err := visibleCalendar(db, id, self)
	if err != nil {
		return nil, err
	}
	return s.present(db, cal)
}

// Update rewrites the title, description and day set. Only the creator may
// edit.
func (s *CalendarService) Update(ctx context.Context, self, id uuid.UUID, req *dto.UpdateCalendarRequest) (*dto.CalendarResponse, error) {
	days, err := parseDays(req.Days)
	if err != nil {
		return nil, err
	}

	var cal *models.Calendar
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cal, err = loadCalendar(forUpdate(tx), id)
		if err != nil {
			return err
		}
		if !CanEdit(self, cal) {
			return ErrNotCreator
		}

		cal.Title = req.Title
		cal.Description = req.Description
		if err := tx.Model(cal).Updates(map[string]interface{}{
			"title":       req.Title,
			"description": req.Description,
		}).Error; err != nil {
			return err
		}
		return replaceDays(tx, cal.ID, days)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("calendar updated", "action", "calendar.update", "user_id", self.String(), "calendar_id", id.String())
	return s.present(s.db.WithContext(ctx), cal)
}

// replaceDays swaps the calendar's day set for days inside tx without ever
// holding two days of the calendar at the same ranking. Kept days are first
// parked above every current and requested ranking, new days are inserted at
// their final ranking, then kept days take their final ranking.
func replaceDays(tx *gorm.DB, calendarID uuid.UUID, days []dayInput) error {
	var current []models.Day
	if err := forUpdate(tx).Where("calendar_id = ?", calendarID).Find(&current).Error; err != nil {
		return err
	}

	existing := make(map[uuid.UUID]bool, len(current))
	maxRanking := 0
	for _, d := range current {
		existing[d.ID] = true
		if d.Ranking > maxRanking {
			maxRanking = d.Ranking
		}
	}

	keep := make([]uuid.UUID, 0, len(days))
	for _, d := range days {
		if d.ranking > maxRanking {
			maxRanking = d.ranking
		}
		if d.id == nil {
			continue
		}
		if !existing[*d.id] {
			return ErrUnknownDay
		}
		keep = append(keep, *d.id)
	}

	removed := tx.Model(&models.Day{}).Select("id").Where("calendar_id = ?", calendarID)
	if len(keep) > 0 {
		removed = removed.Where("id NOT IN ?", keep)
	}
	if err := tx.Where("day_id IN (?)", removed).Delete(&models.TimeSlot{}).Error; err != nil {
		return err
	}
	deleteDays := tx.Where("calendar_id = ?", calendarID)
	if len(keep) > 0 {
		deleteDays = deleteDays.Where("id NOT IN ?", keep)
	}
	if err := deleteDays.Delete(&models.Day{}).Error; err != nil {
		return err
	}

	tempBase := maxRanking + 1
	for i, d := range days {
		if d.id == nil {
			continue
		}
		if err := tx.Model(&models.Day{}).Where("id = ?", *d.id).Updates(map[string]interface{}{
			"date":    d.date,
			"ranking": tempBase + i,
		}).Error; err != nil {
			return err
		}
	}

	for _, d := range days {
		if d.id != nil {
			continue
		}
		day := models.Day{CalendarID: calendarID, Date: d.date, Ranking: d.ranking}
		if err := tx.Create(&day).Error; err != nil {
			return duplicateAs(err, ErrDuplicateRanking)
		}
	}

	for _, d := range days {
		if d.id == nil {
			continue
		}
		if err := tx.Model(&models.Day{}).Where("id = ?", *d.id).Update("ranking", d.ranking).Error; err != nil {
			return duplicateAs(err, ErrDuplicateRanking)
		}
	}
	return nil
}

// Delete removes the calendar when actor is its creator. For a participant it
// means leaving the calendar instead. left reports which of the two happened.
func (s *CalendarService) Delete(ctx context.Context, actor, id uuid.UUID) (left bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cal, err := loadCalendar(forUpdate(tx), id)
		if err != nil {
			return err
		}
		if CanEdit(actor, cal) {
			return deleteCalendar(tx, cal.ID)
		}

		member, err := isParticipant(tx, cal.ID, actor)
		if err != nil {
			return err
		}
		if !member {
			return ErrNotMember
		}
		left = true
		return leaveCalendar(tx, cal, actor)
	})
	if err != nil {
		return false, err
	}

	if left {
		s.metrics.ObserveTransition("participant", "left")
	} else {
		slog.Info("calendar deleted", "action", "calendar.delete", "user_id", actor.String(), "calendar_id", id.String())
	}
	return left, nil
}

// deleteCalendar removes a calendar and everything hanging off it.
func deleteCalendar(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("day_id IN (?)", daysOf(tx, id)).Delete(&models.TimeSlot{}).Error; err != nil {
		return err
	}
	if err := tx.Where("calendar_id = ?", id).Delete(&models.Day{}).Error; err != nil {
		return err
	}
	if err := tx.Where("calendar_id = ?", id).Delete(&models.Participant{}).Error; err != nil {
		return err
	}
	if err := tx.Where("calendar_id = ?", id).Delete(&models.Invitation{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.Calendar{}).Error
}

// Finalize records the chosen date and time. A calendar is finalized once.
func (s *CalendarService) Finalize(ctx context.Context, self, id uuid.UUID, req *dto.FinalizeCalendarRequest) (*dto.CalendarResponse, error) {
	date, err := ParseDate(req.FinalDate)
	if err != nil {
		return nil, err
	}
	start, err := ParseClock(req.FinalTimeslotStart)
	if err != nil {
		return nil, err
	}
	end, err := ParseClock(req.FinalTimeslotEnd)
	if err != nil {
		return nil, err
	}
	if start > end {
		return nil, ErrTimeOrder
	}

	var cal *models.Calendar
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cal, err = loadCalendar(forUpdate(tx), id)
		if err != nil {
			return err
		}
		if !CanEdit(self, cal) {
			return ErrNotCreator
		}
		if cal.IsFinalized {
			return ErrAlreadyFinalized
		}

		var days []models.Day
		if err := tx.Where("calendar_id = ?", id).Find(&days).Error; err != nil {
			return err
		}
		found := false
		for _, d := range days {
			if sameDate(d.Date, date) {
				found = true
				break
			}
		}
		if !found {
			return ErrFinalDateNotInDays
		}

		result := tx.Model(&models.Calendar{}).
			Where("id = ? AND is_finalized = ?", id, false).
			Updates(map[string]interface{}{
				"is_finalized":         true,
				"final_date":           date,
				"final_timeslot_start": start,
				"final_timeslot_end":   end,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyFinalized
		}
		cal.IsFinalized = true
		cal.FinalDate = &date
		cal.FinalTimeslotStart = &start
		cal.FinalTimeslotEnd = &end
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("calendar finalized", "action", "calendar.finalize", "user_id", self.String(), "calendar_id", id.String())
	s.metrics.ObserveTransition("calendar", "finalized")
	return s.present(s.db.WithContext(ctx), cal)
}

// Export builds the iCalendar view of a calendar visible to self.
func (s *CalendarService) Export(ctx context.Context, self, id uuid.UUID) (*ics.Calendar, error) {
	db := s.db.WithContext(ctx)
	cal, err := visibleCalendar(db, id, self)
	if err != nil {
		return nil, err
	}

	var days []models.Day
	if err := db.Where("calendar_id = ?", id).Order("ranking").Find(&days).Error; err != nil {
		return nil, err
	}
	var memberIDs []uuid.UUID
	if err := db.Model(&models.Participant{}).Where("calendar_id = ?", id).
		Order("created_at").Pluck("user_id", &memberIDs).Error; err != nil {
		return nil, err
	}
	users, err := usersByID(db, append([]uuid.UUID{cal.CreatorID}, memberIDs...))
	if err != nil {
		return nil, err
	}

	out := &ics.Calendar{
		ID:          cal.ID.String(),
		Title:       cal.Title,
		Description: cal.Description,
		Organizer:   person(users[cal.CreatorID]),
		Updated:     cal.UpdatedAt,
	}
	for _, uid := range memberIDs {
		out.Attendees = append(out.Attendees, person(users[uid]))
	}
	for _, d := range days {
		out.Days = append(out.Days, time.Time(d.Date))
	}
	if cal.IsFinalized && cal.FinalDate != nil && cal.FinalTimeslotStart != nil && cal.FinalTimeslotEnd != nil {
		out.Finalized = true
		out.Start = At(*cal.FinalDate, *cal.FinalTimeslotStart, s.loc)
		out.End = At(*cal.FinalDate, *cal.FinalTimeslotEnd, s.loc)
	}
	return out, nil
}

func person(u models.User) ics.Person {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if name == "" {
		name = u.Username
	}
	return ics.Person{Name: name, Email: u.Email}
}

func (s *CalendarService) present(db *gorm.DB, cal *models.Calendar) (*dto.CalendarResponse, error) {
	out, err := presentCalendars(db, []models.Calendar{*cal})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// presentCalendars loads days, timeslots and participants for every calendar
// in a fixed number of queries.
func presentCalendars(db *gorm.DB, cals []models.Calendar) ([]dto.CalendarResponse, error) {
	out := make([]dto.CalendarResponse, 0, len(cals))
	if len(cals) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, 0, len(cals))
	userIDs := make([]uuid.UUID, 0, len(cals))
	for _, c := range cals {
		ids = append(ids, c.ID)
		userIDs = append(userIDs, c.CreatorID)
	}

	var days []models.Day
	if err := db.Where("calendar_id IN ?", ids).Order("ranking").Find(&days).Error; err != nil {
		return nil, err
	}
	dayIDs := make([]uuid.UUID, 0, len(days))
	for _, d := range days {
		dayIDs = append(dayIDs, d.ID)
	}

	var slots []models.TimeSlot
	if len(dayIDs) > 0 {
		if err := db.Where("day_id IN ?", dayIDs).Order("start_time").Order("created_at").Find(&slots).Error; err != nil {
			return nil, err
		}
	}
	var members []models.Participant
	if err := db.Where("calendar_id IN ?", ids).Order("created_at").Find(&members).Error; err != nil {
		return nil, err
	}

	for _, ts := range slots {
		userIDs = append(userIDs, ts.OwnerID)
	}
	for _, p := range members {
		userIDs = append(userIDs, p.UserID)
	}
	users, err := usersByID(db, userIDs)
	if err != nil {
		return nil, err
	}

	slotsByDay := make(map[uuid.UUID][]dto.TimeSlotResponse)
	for i := range slots {
		slotsByDay[slots[i].DayID] = append(slotsByDay[slots[i].DayID], presentTimeSlot(&slots[i], users))
	}
	daysByCal := make(map[uuid.UUID][]dto.DayResponse)
	for _, d := range days {
		ts := slotsByDay[d.ID]
		if ts == nil {
			ts = []dto.TimeSlotResponse{}
		}
		daysByCal[d.CalendarID] = append(daysByCal[d.CalendarID], dto.DayResponse{
			ID:        d.ID,
			Date:      FormatDate(d.Date),
			Ranking:   d.Ranking,
			TimeSlots: ts,
		})
	}
	membersByCal := make(map[uuid.UUID][]dto.ParticipantResponse)
	for _, p := range members {
		membersByCal[p.CalendarID] = append(membersByCal[p.CalendarID], dto.ParticipantResponse{
			ID:       p.ID,
			UserID:   p.UserID,
			Username: users[p.UserID].Username,
		})
	}

	for _, c := range cals {
		resp := dto.CalendarResponse{
			ID:              c.ID,
			CreatorID:       c.CreatorID,
			CreatorUsername: users[c.CreatorID].Username,
			Title:           c.Title,
			Description:     c.Description,
			Days:            daysByCal[c.ID],
			Participants:    membersByCal[c.ID],
			IsFinalized:     c.IsFinalized,
			CreatedAt:       c.CreatedAt,
			UpdatedAt:       c.UpdatedAt,
		}
		if resp.Days == nil {
			resp.Days = []dto.DayResponse{}
		}
		if resp.Participants == nil {
			resp.Participants = []dto.ParticipantResponse{}
		}
		if c.FinalDate != nil {
			v := FormatDate(*c.FinalDate)
			resp.FinalDate = &v
		}
		if c.FinalTimeslotStart != nil {
			v := FormatClock(*c.FinalTimeslotStart)
			resp.FinalTimeslotStart = &v
		}
		if c.FinalTimeslotEnd != nil {
			v := FormatClock(*c.FinalTimeslotEnd)
			resp.FinalTimeslotEnd = &v
		}
		out = append(out, resp)
	}
	return out, nil
}
