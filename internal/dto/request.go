package dto

import "time"

type SigninRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegistrationForm is the non-file part of the multipart registration form.
// The payment document arrives as the "payment_document" file field.
type RegistrationForm struct {
	EventID     uint   `form:"event_id" validate:"required"`
	RaceTypeID  uint   `form:"race_type_id" validate:"required"`
	PhoneNumber string `form:"phone_number" validate:"omitempty,max=32"`
	DateOfBirth string `form:"date_of_birth" validate:"required,datetime=2006-01-02"`
	City        string `form:"city" validate:"required,max=255"`
	Club        string `form:"club" validate:"max=255"`
	TShirtSize  string `form:"tshirt_size" validate:"required,oneof=S M L"`
}

type SignupRequest struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

// ProfileForm is the non-file part of the multipart profile update. A new
// photo arrives as the optional "photo" file field.
type ProfileForm struct {
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	BirthDate string `form:"birth_date" validate:"omitempty,datetime=2006-01-02"`
}

type CreateOrganizerRequest struct {
	UserID         uint   `json:"user_id" validate:"required"`
	Contact        string `json:"contact" validate:"required,max=255"`
	PaymentDetails string `json:"payment_details"`
	EventIDs       []uint `json:"event_ids"`
}

type AttachEventsRequest struct {
	EventIDs []uint `json:"event_ids" validate:"required,min=1"`
}

type ConfirmPaymentRequest struct {
	Confirmed *bool `json:"confirmed" validate:"required"`
}

type CreateReviewRequest struct {
	Text string `json:"text" validate:"required"`
}

type CreateLocationRequest struct {
	Street      string   `json:"street" validate:"required"`
	HouseNumber string   `json:"house_number"`
	City        string   `json:"city" validate:"required"`
	PostalCode  string   `json:"postal_code" validate:"required,max=6"`
	Country     string   `json:"country" validate:"required"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
}

type CreateRaceTypeRequest struct {
	Gender          string  `json:"gender" validate:"required,oneof=M F"`
	MinAge          int     `json:"min_age" validate:"gte=0"`
	DistanceKm      int     `json:"distance_km" validate:"required,oneof=5 10 15 20"`
	RegistrationFee float64 `json:"registration_fee" validate:"gte=0"`
}

type ScheduleItemRequest struct {
	StartTime   string `json:"start_time" validate:"required,datetime=15:04"`
	Description string `json:"description" validate:"required"`
}

type CreateEventRequest struct {
	Title       string                `json:"title" validate:"required,max=255"`
	Slug        string                `json:"slug" validate:"omitempty,max=255"`
	Description string                `json:"description"`
	Rules       string                `json:"rules"`
	EventType   string                `json:"event_type" validate:"required,oneof=trail cross mountain road"`
	StartAt     time.Time             `json:"start_at" validate:"required"`
	TotalSlots  int                   `json:"total_slots" validate:"required,gt=0"`
	LocationID  uint                  `json:"location_id" validate:"required"`
	RaceTypeIDs []uint                `json:"race_type_ids" validate:"required,min=1"`
	Schedule    []ScheduleItemRequest `json:"schedule" validate:"dive"`
}
