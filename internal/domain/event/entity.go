package event

import "time"

// Status はイベントの状態を表す
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusCancelled Status = "cancelled"
)

// IsValid は既知の状態かを返す
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusCancelled:
		return true
	}
	return false
}

// Event はイベントエンティティを表す
type Event struct {
	ID             string
	Name           string
	Description    string
	Location       string
	Category       string
	Status         Status
	StartAt        time.Time
	EndAt          time.Time
	MaxAttendees   int
	OrganizerName  string
	OrganizerEmail string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int // 楽観的ロック用
}

// NewEvent は新しいイベントを作成する
func NewEvent(name, description, location, category string, startAt, endAt time.Time, maxAttendees int, organizerName, organizerEmail string) *Event {
	now := time.Now().UTC()
	return &Event{
		Name:           name,
		Description:    description,
		Location:       location,
		Category:       category,
		Status:         StatusActive,
		StartAt:        startAt,
		EndAt:          endAt,
		MaxAttendees:   maxAttendees,
		OrganizerName:  organizerName,
		OrganizerEmail: organizerEmail,
		CreatedAt:      now,
		UpdatedAt:      now,
		Version:        0,
	}
}

// IsActive はイベントが有効かを返す
func (e *Event) IsActive() bool {
	return e.Status == StatusActive
}

// IsUpcoming は基準時刻より後に開始するイベントかを返す
// 「開催予定」は開始時刻が基準時刻より厳密に後であること
func (e *Event) IsUpcoming(at time.Time) bool {
	return e.StartAt.After(at)
}

// Validate はイベントの検証を行う
func (e *Event) Validate() error {
	if e.Name == "" {
		return ErrEventNameRequired
	}
	if e.MaxAttendees <= 0 {
		return ErrInvalidMaxAttendees
	}
	if e.EndAt.Before(e.StartAt) {
		return ErrInvalidEventTime
	}
	if !e.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}
