package model

import "time"

// Session is an authenticated portal session held in memory for one run.
type Session struct {
	IssuedAt time.Time
	Token    string
}

// MFAChallenge pairs a server challenge token with the phone the code goes to.
type MFAChallenge struct {
	IssuedAt time.Time
	Token    string
	Phone    string
}

// MaskedPhone hides all but the last four digits of the challenge phone.
func (c MFAChallenge) MaskedPhone() string {
	if len(c.Phone) <= 4 {
		return c.Phone
	}
	masked := make([]byte, 0, len(c.Phone))
	for i := 0; i < len(c.Phone)-4; i++ {
		if c.Phone[i] >= '0' && c.Phone[i] <= '9' {
			masked = append(masked, '*')
		} else {
			masked = append(masked, c.Phone[i])
		}
	}
	return string(masked) + c.Phone[len(c.Phone)-4:]
}
