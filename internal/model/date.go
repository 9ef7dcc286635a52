package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// jsonDate decodes a day-granular value sent either as YYYY-MM-DD or as an
// RFC 3339 timestamp. Date-only values are midnight UTC.
type jsonDate time.Time

func (d *jsonDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		*d = jsonDate(t)
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("date %q must be YYYY-MM-DD or RFC 3339", s)
	}
	*d = jsonDate(t)
	return nil
}

func (h *Habit) UnmarshalJSON(data []byte) error {
	type plain Habit
	aux := struct {
		*plain
		StartDate jsonDate  `json:"start_date"`
		EndDate   *jsonDate `json:"end_date"`
	}{plain: (*plain)(h)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	h.StartDate = time.Time(aux.StartDate)
	h.EndDate = nil
	if aux.EndDate != nil {
		end := time.Time(*aux.EndDate)
		h.EndDate = &end
	}
	return nil
}

func (l *ActivityLog) UnmarshalJSON(data []byte) error {
	type plain ActivityLog
	aux := struct {
		*plain
		LogDate jsonDate `json:"log_date"`
	}{plain: (*plain)(l)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	l.LogDate = time.Time(aux.LogDate)
	return nil
}

// UnmarshalJSON decodes the embedded log and the habit separately; without
// it the promoted ActivityLog method would drop the habit.
func (a *AnnotatedLog) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &a.ActivityLog); err != nil {
		return err
	}
	var aux struct {
		Habit Habit `json:"habit"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.Habit = aux.Habit
	return nil
}
