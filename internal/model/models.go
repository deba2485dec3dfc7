package model

import "time"

type ID = uint

type Status string

const (
	StatusPending    Status = "pending"
	StatusSeparating Status = "separating"
	StatusSeparated  Status = "separated"
	StatusApproved   Status = "approved"
	StatusConferring Status = "conferring"
	StatusConferred  Status = "conferred"
	StatusCancelled  Status = "cancelled"
)

type Role int

const (
	RoleSeparator Role = 1
	RoleConferent Role = 2
	RoleApprover  Role = 3
)

type Person struct {
	ID        ID        `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Name         string `json:"name" db:"name"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         Role   `json:"role" db:"role"`
	OnBreak      bool   `json:"onBreak" db:"is_break"`
}

func (p Person) IsApprover() bool {
	return p.Role == RoleApprover
}

// Note is a warehouse order tracked through the separation and conference
// stages. The two stages share the row: each carries its own actor and
// started/finished timestamp pair.
type Note struct {
	ID        ID        `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Number      string    `json:"number" db:"number"`
	ItemCount   int       `json:"itemCount" db:"item_count"`
	VolumeCount int       `json:"volumeCount" db:"volume_count"`
	Destination string    `json:"destination" db:"destination"`
	OrderDate   time.Time `json:"orderDate" db:"order_date"`

	// QueuePosition is set by explicit reordering; unpositioned notes sort
	// after positioned ones by order date.
	QueuePosition *int `json:"queuePosition,omitempty" db:"queue_position"`

	Status   Status `json:"status" db:"status"`
	Approved bool   `json:"approved" db:"approved"`

	SeparatorID          *ID        `json:"separatorId,omitempty" db:"separator_id"`
	SeparationStartedAt  *time.Time `json:"separationStartedAt,omitempty" db:"separation_started_at"`
	SeparationFinishedAt *time.Time `json:"separationFinishedAt,omitempty" db:"separation_finished_at"`

	ConferencePersonID   *ID        `json:"conferencePersonId,omitempty" db:"conference_person_id"`
	ConferenceStartedAt  *time.Time `json:"conferenceStartedAt,omitempty" db:"conference_started_at"`
	ConferenceFinishedAt *time.Time `json:"conferenceFinishedAt,omitempty" db:"conference_finished_at"`
}

type Product struct {
	ID        ID        `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	NoteNumber  string `json:"noteNumber" db:"note_number"`
	Code        string `json:"code" db:"product_code"`
	Description string `json:"description" db:"product_description"`
	Amount      int    `json:"amount" db:"product_amount"`
	Location    string `json:"location" db:"product_location"`
}

// TimeRecord is the derived view of a note once a stage has a complete
// started/finished pair. Duration is finished minus started, floored to
// whole seconds.
type TimeRecord struct {
	NoteID      ID        `json:"noteId"`
	Number      string    `json:"number"`
	Stage       Stage     `json:"stage"`
	PersonID    ID        `json:"personId"`
	ItemCount   int       `json:"itemCount"`
	VolumeCount int       `json:"volumeCount"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	Duration    int       `json:"duration"`
}
