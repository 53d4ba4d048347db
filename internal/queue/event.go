// Package queue defines the domain events exchanged over RabbitMQ and the
// consumer that records them in an append-only log file.
package queue

import (
	"fmt"
	"strings"
)

// Queue names. Each event type has its own durable queue.
const (
	AnnoncePublished = "annonce.published"
	MessageSent      = "message.sent"
)

// Queues lists every queue the consumer listens to.
var Queues = []string{AnnoncePublished, MessageSent}

// AnnoncePublishedEvent is emitted after a listing is stored.
type AnnoncePublishedEvent struct {
	AnnonceID   int64   `json:"annonce_id"`
	Titre       string  `json:"titre"`
	Ville       string  `json:"ville"`
	AuteurID    string  `json:"auteur_id"`
	TotalRent   float64 `json:"total_rent"`
	PublishedAt string  `json:"published_at"`
}

func (e AnnoncePublishedEvent) Line() string {
	return fmt.Sprintf("[%s] Annonce published | annonce_id=%d | auteur_id=%s | ville=%q | titre=%q | total_rent=%.2f",
		e.PublishedAt, e.AnnonceID, e.AuteurID, e.Ville, e.Titre, e.TotalRent)
}

// MessageSentEvent is emitted after a chat message is stored. The content
// itself is not carried.
type MessageSentEvent struct {
	MessageID int64  `json:"message_id"`
	Sender    string `json:"sender"`
	Length    int    `json:"length"`
	SentAt    string `json:"sent_at"`
}

func (e MessageSentEvent) Line() string {
	return fmt.Sprintf("[%s] Message sent | message_id=%d | sender=%q | length=%d",
		e.SentAt, e.MessageID, e.Sender, e.Length)
}

// oneLine keeps a log entry on a single line whatever the payload holds.
func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
