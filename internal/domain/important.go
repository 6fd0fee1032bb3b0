package domain

// ImportantDateType classifies a calendar annotation.
type ImportantDateType string

const (
	ImportantAnniversary ImportantDateType = "anniversary"
	ImportantDeadline    ImportantDateType = "deadline"
	ImportantEvent       ImportantDateType = "event"
	ImportantReminder    ImportantDateType = "reminder"
	ImportantBirthday    ImportantDateType = "birthday"
	ImportantOther       ImportantDateType = "other"
)

// ImportantDateTypes lists the accepted types in display order.
var ImportantDateTypes = []ImportantDateType{
	ImportantAnniversary,
	ImportantDeadline,
	ImportantEvent,
	ImportantReminder,
	ImportantBirthday,
	ImportantOther,
}

// NormalizeImportantDateType maps unknown type names to ImportantOther.
func NormalizeImportantDateType(s string) ImportantDateType {
	for _, t := range ImportantDateTypes {
		if string(t) == s {
			return t
		}
	}
	return ImportantOther
}

// ImportantDate annotates one calendar day. It never takes part in archival.
type ImportantDate struct {
	Type      ImportantDateType `json:"type"`
	Label     string            `json:"label"`
	AddedDate DateBucket        `json:"addedDate"`
}

// ImportantDates maps a day to its annotation; one per day.
type ImportantDates map[DateBucket]ImportantDate

// Clone returns a shallow copy.
func (d ImportantDates) Clone() ImportantDates {
	out := make(ImportantDates, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
