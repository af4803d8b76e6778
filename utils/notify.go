package utils

import (
	"fmt"
	"log"
)

// Notification dispatch is best effort: each helper runs the send in a
// goroutine and logs failures. A broken mail provider must never fail a
// bestowal or completion.

// NotifyBestowmentMade thanks the bestower for their claim.
func NotifyBestowmentMade(email, name, orchardTitle string, pocketCount int, gross float64) {
	go func() {
		subject := "Your bestowment into " + orchardTitle
		body := fmt.Sprintf(`
			<h2>Thank you, %s!</h2>
			<p>You bestowed <strong>%d pocket(s)</strong> into <strong>%s</strong>
			for a total of <strong>$%.2f</strong>.</p>
			<p>Watch your pockets grow in your dashboard.</p>`,
			name, pocketCount, orchardTitle, gross)
		if err := SendEmail(email, name, subject, body); err != nil {
			log.Printf("bestowment-made email to %s failed: %v", email, err)
		}
	}()
}

// NotifyBestowmentReceived tells the grower pockets were claimed.
func NotifyBestowmentReceived(email, name, bestowerName, orchardTitle string, pocketCount int, net float64) {
	go func() {
		subject := "New bestowment on " + orchardTitle
		body := fmt.Sprintf(`
			<h2>Good news, %s!</h2>
			<p><strong>%s</strong> bestowed <strong>%d pocket(s)</strong> into
			<strong>%s</strong>.</p>
			<p>Net amount to you after tithing and processing: <strong>$%.2f</strong>.</p>`,
			name, bestowerName, pocketCount, orchardTitle, net)
		if err := SendEmail(email, name, subject, body); err != nil {
			log.Printf("bestowment-received email to %s failed: %v", email, err)
		}
	}()
}

// NotifyOrchardCompleted tells the grower their orchard is fully funded
// and the payout has been triggered.
func NotifyOrchardCompleted(email, name, orchardTitle string) {
	go func() {
		subject := orchardTitle + " is fully funded!"
		body := fmt.Sprintf(`
			<h2>Congratulations, %s!</h2>
			<p>Every pocket in <strong>%s</strong> has been filled and your
			payout is being processed.</p>`,
			name, orchardTitle)
		if err := SendEmail(email, name, subject, body); err != nil {
			log.Printf("orchard-completed email to %s failed: %v", email, err)
		}
	}()
}
