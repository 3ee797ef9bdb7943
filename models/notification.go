package models

import "time"

// NotificationType enumerates the operational events surfaced to users
type NotificationType string

const (
	NotifyPaymentConfirmed     NotificationType = "payment_confirmed"
	NotifyOrderPreparing       NotificationType = "order_preparing"
	NotifyDriverAssigned       NotificationType = "driver_assigned"
	NotifyOutForDelivery       NotificationType = "out_for_delivery"
	NotifyDelivered            NotificationType = "delivered"
	NotifyReservationConfirmed NotificationType = "reservation_confirmed"
	NotifyReservationCancelled NotificationType = "reservation_cancelled"
	NotifyReservationReminder  NotificationType = "reservation_reminder"
	NotifyGeneric              NotificationType = "generic"
)

// NotificationStatus represents the read/unread lifecycle of a notification
type NotificationStatus string

const (
	StatusUnread    NotificationStatus = "UNREAD"
	StatusRead      NotificationStatus = "READ"
	StatusDismissed NotificationStatus = "DISMISSED"
)

// DriverInfo is the optional driver payload attached to delivery events.
type DriverInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Vehicle string `json:"vehicle,omitempty"`
}

// Notification is a single entry in a recipient's event log. A notification
// is visible to exactly one recipient and drops out of all listings once
// dismissed, but is only physically removed by an explicit delete or
// clear-all.
type Notification struct {
	ID            string             `json:"id"`
	RecipientID   string             `json:"recipient_id"`
	Type          NotificationType   `json:"type"`
	Title         string             `json:"title"`
	Message       string             `json:"message"`
	Status        NotificationStatus `json:"status"`
	ReferenceID   string             `json:"reference_id,omitempty"`
	ReferenceType string             `json:"reference_type,omitempty"`
	DriverInfo    *DriverInfo        `json:"driver_info,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}
