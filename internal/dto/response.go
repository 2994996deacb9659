package dto

import (
	"fmt"
	"time"

	"github.com/Eursukkul/race-registration/internal/models"
	"github.com/Eursukkul/race-registration/internal/service"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type ExportResponse struct {
	Rows int `json:"rows"`
}

type PageResponse[T any] struct {
	Items   []T   `json:"items"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
}

func ToPageResponse[S, T any](p *service.Page[S], conv func(*S) T) PageResponse[T] {
	items := make([]T, len(p.Items))
	for i := range p.Items {
		items[i] = conv(&p.Items[i])
	}
	return PageResponse[T]{Items: items, Page: p.Number, PerPage: p.PerPage, Total: p.Total, Pages: p.Pages}
}

type RaceTypeResponse struct {
	ID              uint          `json:"id"`
	Label           string        `json:"label"`
	Gender          models.Gender `json:"gender"`
	MinAge          int           `json:"min_age"`
	DistanceKm      int           `json:"distance_km"`
	RegistrationFee float64       `json:"registration_fee"`
}

func ToRaceTypeResponse(rt *models.RaceType) RaceTypeResponse {
	return RaceTypeResponse{
		ID:              rt.ID,
		Label:           rt.Label(),
		Gender:          rt.Gender,
		MinAge:          rt.MinAge,
		DistanceKm:      rt.DistanceKm,
		RegistrationFee: rt.RegistrationFee,
	}
}

func ToRaceTypeResponses(races []models.RaceType) []RaceTypeResponse {
	resp := make([]RaceTypeResponse, len(races))
	for i := range races {
		resp[i] = ToRaceTypeResponse(&races[i])
	}
	return resp
}

type LocationResponse struct {
	ID          uint     `json:"id"`
	Address     string   `json:"address"`
	Street      string   `json:"street"`
	HouseNumber string   `json:"house_number,omitempty"`
	City        string   `json:"city"`
	PostalCode  string   `json:"postal_code"`
	Country     string   `json:"country"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

func ToLocationResponse(l *models.Location) *LocationResponse {
	if l == nil {
		return nil
	}
	return &LocationResponse{
		ID:          l.ID,
		Address:     l.String(),
		Street:      l.Street,
		HouseNumber: l.HouseNumber,
		City:        l.City,
		PostalCode:  l.PostalCode,
		Country:     l.Country,
		Latitude:    l.Latitude,
		Longitude:   l.Longitude,
	}
}

type EventResponse struct {
	ID         uint              `json:"id"`
	Title      string            `json:"title"`
	Slug       string            `json:"slug"`
	EventType  models.EventType  `json:"event_type"`
	StartAt    time.Time         `json:"start_at"`
	TotalSlots int               `json:"total_slots"`
	FreeSlots  int               `json:"free_slots"`
	ImageURL   string            `json:"image_url,omitempty"`
	Location   *LocationResponse `json:"location,omitempty"`
}

// MediaURL maps a stored event image path to its public URL under /media.
func MediaURL(relPath string) string {
	if relPath == "" {
		return ""
	}
	return "/media/" + relPath
}

func ToEventResponse(s *service.EventSummary) EventResponse {
	return EventResponse{
		ID:         s.ID,
		Title:      s.Title,
		Slug:       s.Slug,
		EventType:  s.Type,
		StartAt:    s.StartAt,
		TotalSlots: s.TotalSlots,
		FreeSlots:  s.FreeSlots,
		ImageURL:   MediaURL(s.ImagePath),
		Location:   ToLocationResponse(s.Location),
	}
}

type ScheduleItemResponse struct {
	StartTime   string `json:"start_time"`
	Description string `json:"description"`
}

type EventDetailResponse struct {
	EventResponse
	Description string                 `json:"description"`
	Rules       string                 `json:"rules"`
	DaysLeft    int                    `json:"days_left"`
	RaceTypes   []RaceTypeResponse     `json:"race_types"`
	Schedule    []ScheduleItemResponse `json:"schedule"`
}

func ToEventDetailResponse(d *service.EventDetail) EventDetailResponse {
	schedule := make([]ScheduleItemResponse, len(d.Schedule))
	for i, item := range d.Schedule {
		schedule[i] = ScheduleItemResponse{StartTime: item.StartTime, Description: item.Description}
	}
	return EventDetailResponse{
		EventResponse: ToEventResponse(&service.EventSummary{Event: *d.Event, FreeSlots: d.FreeSlots}),
		Description:   d.Description,
		Rules:         d.Rules,
		DaysLeft:      d.DaysLeft,
		RaceTypes:     ToRaceTypeResponses(d.RaceTypes),
		Schedule:      schedule,
	}
}

type RegistrationResponse struct {
	ID               uint              `json:"id"`
	EventID          uint              `json:"event_id"`
	EventTitle       string            `json:"event_title,omitempty"`
	EventSlug        string            `json:"event_slug,omitempty"`
	RaceTypeID       uint              `json:"race_type_id"`
	RaceType         string            `json:"race_type,omitempty"`
	UserID           uint              `json:"user_id"`
	Participant      string            `json:"participant,omitempty"`
	PaymentDocument  string            `json:"payment_document"`
	DocumentURL      string            `json:"payment_document_url,omitempty"`
	PhoneNumber      string            `json:"phone_number,omitempty"`
	DateOfBirth      string            `json:"date_of_birth"`
	City             string            `json:"city"`
	Club             string            `json:"club,omitempty"`
	TShirtSize       models.TShirtSize `json:"tshirt_size"`
	PaymentConfirmed bool              `json:"payment_confirmed"`
	IsActive         bool              `json:"is_active"`
	RegisteredAt     time.Time         `json:"registered_at"`
}

func ToRegistrationResponse(r *models.Registration) RegistrationResponse {
	resp := RegistrationResponse{
		ID:               r.ID,
		EventID:          r.EventID,
		RaceTypeID:       r.RaceTypeID,
		UserID:           r.UserID,
		PaymentDocument:  r.PaymentDocument,
		PhoneNumber:      r.PhoneNumber,
		DateOfBirth:      r.DateOfBirth.Format("2006-01-02"),
		City:             r.City,
		Club:             r.Club,
		TShirtSize:       r.TShirtSize,
		PaymentConfirmed: r.PaymentConfirmed,
		IsActive:         r.IsActive,
		RegisteredAt:     r.RegisteredAt,
	}
	if r.PaymentDocument != "" {
		resp.DocumentURL = fmt.Sprintf("/api/v1/registrations/%d/document", r.ID)
	}
	if r.Event != nil {
		resp.EventTitle = r.Event.Title
		resp.EventSlug = r.Event.Slug
	}
	if r.RaceType != nil {
		resp.RaceType = r.RaceType.Label()
	}
	if r.User != nil {
		resp.Participant = r.User.DisplayName()
	}
	return resp
}

// EventRegistrantResponse is the public view of a registration: no contact
// details, birth date or payment data.
type EventRegistrantResponse struct {
	ID          uint   `json:"id"`
	Participant string `json:"participant"`
	RaceType    string `json:"race_type,omitempty"`
	City        string `json:"city"`
	Club        string `json:"club,omitempty"`
	IsActive    bool   `json:"is_active"`
}

func ToEventRegistrantResponse(r *models.Registration) EventRegistrantResponse {
	resp := EventRegistrantResponse{
		ID:       r.ID,
		City:     r.City,
		Club:     r.Club,
		IsActive: r.IsActive,
	}
	if r.RaceType != nil {
		resp.RaceType = r.RaceType.Label()
	}
	if r.User != nil {
		resp.Participant = r.User.DisplayName()
	}
	return resp
}

type RaceGroupResponse[T any] struct {
	RaceType      RaceTypeResponse `json:"race_type"`
	Registrations []T              `json:"registrations"`
}

type EventRegistrationsResponse[T any] struct {
	EventID    uint                   `json:"event_id"`
	EventSlug  string                 `json:"event_slug"`
	FreeSlots  int                    `json:"free_slots"`
	ActiveOnly bool                   `json:"active_only"`
	Full       bool                   `json:"full"`
	Groups     []RaceGroupResponse[T] `json:"groups"`
}

// ToEventRegistrationsResponse renders every registration with conv:
// ToRegistrationResponse for privileged viewers, ToEventRegistrantResponse otherwise.
func ToEventRegistrationsResponse[T any](er *service.EventRegistrations, conv func(*models.Registration) T) EventRegistrationsResponse[T] {
	groups := make([]RaceGroupResponse[T], len(er.Groups))
	for i := range er.Groups {
		g := &er.Groups[i]
		regs := make([]T, len(g.Registrations))
		for j := range g.Registrations {
			regs[j] = conv(&g.Registrations[j])
		}
		groups[i] = RaceGroupResponse[T]{RaceType: ToRaceTypeResponse(&g.RaceType), Registrations: regs}
	}
	return EventRegistrationsResponse[T]{
		EventID:    er.Event.ID,
		EventSlug:  er.Event.Slug,
		FreeSlots:  er.FreeSlots,
		ActiveOnly: er.ActiveOnly,
		Full:       er.Full,
		Groups:     groups,
	}
}

type ReviewResponse struct {
	ID        uint      `json:"id"`
	EventID   uint      `json:"event_id"`
	AuthorID  uint      `json:"author_id"`
	Author    string    `json:"author,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func ToReviewResponse(r *models.Review) ReviewResponse {
	resp := ReviewResponse{
		ID:        r.ID,
		EventID:   r.EventID,
		AuthorID:  r.AuthorID,
		Text:      r.Text,
		CreatedAt: r.CreatedAt,
	}
	if r.Author != nil {
		resp.Author = r.Author.DisplayName()
	}
	return resp
}

func ToReviewResponses(reviews []models.Review) []ReviewResponse {
	resp := make([]ReviewResponse, len(reviews))
	for i := range reviews {
		resp[i] = ToReviewResponse(&reviews[i])
	}
	return resp
}

type UserResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BirthDate string `json:"birth_date,omitempty"`
	HasPhoto  bool   `json:"has_photo"`
	IsAdmin   bool   `json:"is_admin"`
}

func ToUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		HasPhoto:  u.PhotoPath != "",
		IsAdmin:   u.IsAdmin,
	}
	if u.BirthDate != nil {
		resp.BirthDate = u.BirthDate.Format("2006-01-02")
	}
	return resp
}

type OrganizerResponse struct {
	ID             uint   `json:"id"`
	UserID         uint   `json:"user_id"`
	Contact        string `json:"contact"`
	PaymentDetails string `json:"payment_details"`
	EventIDs       []uint `json:"event_ids"`
}

func ToOrganizerResponse(o *models.Organizer) OrganizerResponse {
	ids := make([]uint, len(o.Events))
	for i := range o.Events {
		ids[i] = o.Events[i].ID
	}
	return OrganizerResponse{
		ID:             o.ID,
		UserID:         o.UserID,
		Contact:        o.Contact,
		PaymentDetails: o.PaymentDetails,
		EventIDs:       ids,
	}
}
