package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var (
	// FirebaseApp is the Firebase app instance
	FirebaseApp *firebase.App
	// MessagingClient is the Firebase Cloud Messaging client
	MessagingClient *messaging.Client
)

// InitFirebase initializes Firebase Admin SDK
func InitFirebase() error {
	ctx := context.Background()

	serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
	if serviceAccountPath == "" {
		log.Println("Warning: FIREBASE_SERVICE_ACCOUNT_PATH not set. Push notifications will be disabled.")
		return nil
	}

	opt := option.WithCredentialsFile(serviceAccountPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return fmt.Errorf("error initializing firebase app: %v", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("error getting messaging client: %v", err)
	}

	FirebaseApp = app
	MessagingClient = client

	log.Println("Firebase Cloud Messaging initialized successfully")
	return nil
}

// NotificationPayload represents the notification data
type NotificationPayload struct {
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Data      map[string]interface{} `json:"data,omitempty"`
	ChannelID string                 `json:"channelId,omitempty"`
	Priority  string                 `json:"priority,omitempty"` // high, normal
}

// SendNotificationToToken sends a notification to a specific FCM token
func SendNotificationToToken(ctx context.Context, token string, payload NotificationPayload) error {
	if MessagingClient == nil {
		log.Println("Warning: Firebase not initialized. Skipping notification.")
		return nil
	}

	// Convert data map to string map (required by FCM)
	dataStrings := make(map[string]string)
	for key, value := range payload.Data {
		switch v := value.(type) {
		case string:
			dataStrings[key] = v
		case int, int64, float64, bool, uint:
			dataStrings[key] = fmt.Sprintf("%v", v)
		default:
			jsonData, err := json.Marshal(v)
			if err != nil {
				log.Printf("Error marshaling data for key %s: %v", key, err)
				continue
			}
			dataStrings[key] = string(jsonData)
		}
	}

	channelID := payload.ChannelID
	if channelID == "" {
		channelID = "drivelink_default"
	}

	priority := messaging.PriorityHigh
	if payload.Priority == "normal" {
		priority = messaging.PriorityDefault
	}

	message := &messaging.Message{
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data:  dataStrings,
		Token: token,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:                 "default",
				ChannelID:             channelID,
				Priority:              priority,
				DefaultSound:          true,
				DefaultVibrateTimings: true,
			},
		},
	}

	response, err := MessagingClient.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("error sending message: %v", err)
	}

	log.Printf("Successfully sent notification, response: %s", response)
	return nil
}

// SendDriverSelectedNotification notifies a driver that a client selected
// them for a booking request
func SendDriverSelectedNotification(ctx context.Context, token string, requestID uint, clientName, route string) {
	payload := NotificationPayload{
		Title: "You have been selected! 🎉",
		Body:  fmt.Sprintf("%s selected you for the trip %s. Open the app to finalize.", clientName, route),
		Data: map[string]interface{}{
			"type":      "driver_selected",
			"requestId": fmt.Sprintf("%d", requestID),
		},
		ChannelID: "drivelink_bookings",
		Priority:  "high",
	}

	if err := SendNotificationToToken(ctx, token, payload); err != nil {
		log.Printf("Failed to send driver selected notification: %v", err)
	}
}

// SendBookingFinalizedNotification notifies a client that the selected
// driver confirmed the booking
func SendBookingFinalizedNotification(ctx context.Context, token string, bookingID uint, driverName string) {
	payload := NotificationPayload{
		Title: "Booking confirmed",
		Body:  fmt.Sprintf("Driver %s has confirmed your booking.", driverName),
		Data: map[string]interface{}{
			"type":      "booking_finalized",
			"bookingId": fmt.Sprintf("%d", bookingID),
		},
		ChannelID: "drivelink_bookings",
		Priority:  "high",
	}

	if err := SendNotificationToToken(ctx, token, payload); err != nil {
		log.Printf("Failed to send booking finalized notification: %v", err)
	}
}

// SendFormReviewedNotification notifies a driver of the admin's decision on
// their registration form
func SendFormReviewedNotification(ctx context.Context, token string, approved bool, reason string) {
	title := "Registration approved"
	body := "Your driver registration has been approved. You can now apply to booking requests."
	if !approved {
		title = "Registration rejected"
		body = "Your driver registration was rejected."
		if reason != "" {
			body = fmt.Sprintf("Your driver registration was rejected: %s", reason)
		}
	}

	payload := NotificationPayload{
		Title: title,
		Body:  body,
		Data: map[string]interface{}{
			"type": "form_reviewed",
		},
		ChannelID: "drivelink_account",
	}

	if err := SendNotificationToToken(ctx, token, payload); err != nil {
		log.Printf("Failed to send form reviewed notification: %v", err)
	}
}
