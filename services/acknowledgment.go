package services

import (
	"github.com/qrbell/qrbell/models"
)

// AlertNotifier is the push-delivery collaborator as the core sees it.
// Both methods are fire-and-forget on the implementation side.
type AlertNotifier interface {
	NotifyNewAlert(alert models.Alert)
	NotifyResolved(alert models.Alert, resolvedBy string)
}

// Acknowledgment processes a staff device's resolution action, whether
// it arrived as an explicit HTTP call or as a notification "acknowledge"
// action. The other notification action ("view") never reaches this
// service: the client focuses or opens the presentation surface URL
// carried in the push payload instead.
type Acknowledgment struct {
	Ledger   *AlertLedger
	Notifier AlertNotifier
}

func NewAcknowledgment(ledger *AlertLedger, notifier AlertNotifier) *Acknowledgment {
	return &Acknowledgment{Ledger: ledger, Notifier: notifier}
}

// Acknowledge resolves the alert and fires a confirmation notification
// back to the acknowledging surface. Already-resolved and unknown ids are
// success outcomes for the caller; the confirmation is best-effort and
// never fails the resolution.
func (a *Acknowledgment) Acknowledge(alertID uint, resolvedBy string) error {
	_, alert, err := a.Ledger.Resolve(alertID, resolvedBy)
	if err != nil {
		return err
	}
	if alert != nil && a.Notifier != nil {
		a.Notifier.NotifyResolved(*alert, resolvedBy)
	}
	return nil
}
