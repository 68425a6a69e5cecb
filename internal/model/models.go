package model

import "time"

type ID = uint

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleRegular Role = "regular"
)

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserDisabled UserStatus = "disabled"
	UserDeleted  UserStatus = "deleted"
)

type User struct {
	ID        ID        `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Name   string     `json:"name" db:"name"`
	Role   Role       `json:"role" db:"role"`
	Status UserStatus `json:"status" db:"status"`
}

func (u User) IsActive() bool { return u.Status == UserActive }

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// CanManage reports whether u may act on data owned by owner.
func (u User) CanManage(owner ID) bool {
	return u.ID == owner || u.IsAdmin()
}

type Category struct {
	ID        ID        `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Name    string `json:"name" db:"name"`
	Deleted bool   `json:"deleted" db:"deleted"`
}

// Entry is one timed record of a user doing one category of work.
// At most one entry per user has a nil End.
type Entry struct {
	ID        ID        `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	User         ID     `json:"userId" db:"user_id"`
	Category     *ID    `json:"categoryId" db:"category_id"`
	CategoryName string `json:"categoryName" db:"category_name"`

	Start           time.Time  `json:"startTime" db:"start_time"`
	End             *time.Time `json:"endTime" db:"end_time"`
	DurationSeconds *int64     `json:"durationSeconds" db:"duration_seconds"`

	IsManual bool `json:"isManual" db:"is_manual"`
	IsEdited bool `json:"isEdited" db:"is_edited"`
}

func (e Entry) IsOpen() bool { return e.End == nil }

func (e Entry) Kind() EntryKind { return KindOf(e.IsManual, e.IsEdited) }

// IsBoundaryMarker reports whether e is a day-closing marker: a live entry
// with neither a category nor a category name.
func (e Entry) IsBoundaryMarker() bool {
	return !e.IsManual && e.Category == nil && e.CategoryName == ""
}

// StoredSeconds returns the duration persisted on a closed entry, falling
// back to End-Start. Open entries report false. Negative values clamp to 0.
func (e Entry) StoredSeconds() (int64, bool) {
	var secs int64
	switch {
	case e.DurationSeconds != nil:
		secs = *e.DurationSeconds
	case e.End != nil:
		secs = int64(e.End.Sub(e.Start) / time.Second)
	default:
		return 0, false
	}
	if secs < 0 {
		secs = 0
	}
	return secs, true
}

// EntryKind enumerates the legal combinations of the manual and edited flags.
type EntryKind string

const (
	KindLive         EntryKind = "live"
	KindManual       EntryKind = "manual"
	KindLiveEdited   EntryKind = "live+edited"
	KindManualEdited EntryKind = "manual+edited"
)

func KindOf(manual, edited bool) EntryKind {
	switch {
	case manual && edited:
		return KindManualEdited
	case manual:
		return KindManual
	case edited:
		return KindLiveEdited
	default:
		return KindLive
	}
}

func (k EntryKind) Manual() bool { return k == KindManual || k == KindManualEdited }

func (k EntryKind) Edited() bool { return k == KindLiveEdited || k == KindManualEdited }

// Attendance marks whether a user ended a given business day.
type Attendance struct {
	ID        ID        `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	User    ID         `json:"userId" db:"user_id"`
	Date    string     `json:"date" db:"work_date"`
	HasLeft bool       `json:"hasLeft" db:"has_left"`
	LeftAt  *time.Time `json:"leftAt" db:"left_at"`
	IsFixed bool       `json:"isFixed" db:"is_fixed"`
}

type DailyStatus struct {
	Date         string `json:"date"`
	NeedsFix     bool   `json:"needsFix"`
	HasLeft      bool   `json:"hasLeft"`
	HasOpenEntry bool   `json:"hasOpenEntry"`
}
