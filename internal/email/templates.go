package email

import "fmt"

// SubmissionSubject is the subject of every selling submission notification.
const SubmissionSubject = "New Selling Submission"

// SubmissionText returns the plain-text body for a selling submission.
// The contact fields are included verbatim.
func SubmissionText(name, email, phone string) string {
	return fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s", name, email, phone)
}
