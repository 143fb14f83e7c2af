package schedule

// FirstConflict returns the first existing booking that collides with
// candidate. The candidate is expected to have passed Validate.
// Existing entries without a complete time range are skipped.
func FirstConflict(candidate Booking, existing []Booking) (Booking, bool) {
	for _, ex := range existing {
		if collides(candidate, ex) {
			return ex, true
		}
	}
	return Booking{}, false
}

// Conflicts reports whether candidate collides with any existing booking.
func Conflicts(candidate Booking, existing []Booking) bool {
	_, ok := FirstConflict(candidate, existing)
	return ok
}

// Without drops the booking with the given id, used when re-checking an edit.
func Without(existing []Booking, id int64) []Booking {
	out := make([]Booking, 0, len(existing))
	for _, b := range existing {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}

func collides(cand, ex Booking) bool {
	if cand.Weekday != ex.Weekday {
		return false
	}
	if !cand.HasTimes() || !ex.HasTimes() {
		return false
	}
	if *cand.EndTime <= *ex.StartTime || *cand.StartTime >= *ex.EndTime {
		return false
	}
	if cand.HasDateRange() && ex.HasDateRange() {
		if dateOf(*cand.EndDate).Before(dateOf(*ex.StartDate)) || dateOf(*cand.StartDate).After(dateOf(*ex.EndDate)) {
			return false
		}
	}
	return true
}
