package model

import "encoding/json"

// DateLayout is the calendar-day format used for the taken-date ledger.
// Dates carry no time-of-day component and are compared as plain strings.
const DateLayout = "2006-01-02"

// DateSet is a medication's taken-date ledger: an ordered set of calendar-day
// strings, each present at most once.
type DateSet []string

// Contains reports whether date is already in the set
func (d DateSet) Contains(date string) bool {
	for _, existing := range d {
		if existing == date {
			return true
		}
	}
	return false
}

// Add appends date to the set if absent. Adding a date that is already
// present is a no-op, so repeated calls for the same day cannot produce
// duplicates.
func (d DateSet) Add(date string) DateSet {
	if d.Contains(date) {
		return d
	}
	return append(d, date)
}

// DecodeDateSet parses the serialized ledger blob (a JSON array of date
// strings). A malformed or empty blob yields an empty set rather than an
// error; duplicates in the blob are dropped on the way in.
func DecodeDateSet(blob string) DateSet {
	if blob == "" {
		return DateSet{}
	}
	var raw []string
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return DateSet{}
	}
	set := make(DateSet, 0, len(raw))
	for _, date := range raw {
		set = set.Add(date)
	}
	return set
}

// Encode serializes the set back into the storage blob format
func (d DateSet) Encode() (string, error) {
	if d == nil {
		d = DateSet{}
	}
	bytes, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
