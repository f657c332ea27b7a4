// Package notes records finished transcriptions in the note database so the
// companion app can list them.
package notes

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	postgrest "github.com/supabase-community/postgrest-go"
)

const notesTable = "transcription_notes"

// Note maps to one row of the transcription_notes table. omitempty keeps
// unset optional columns out of the insert payload.
type Note struct {
	ID        string    `json:"id"`
	SourceKey string    `json:"source_key"`
	OutputKey string    `json:"output_key"`
	Title     string    `json:"title"`
	Plan      string    `json:"plan,omitempty"`
	Segments  int       `json:"segments,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store writes notes through the Postgrest API.
type Store struct {
	client *postgrest.Client
	log    *logrus.Entry
}

// NewStore wraps an initialized Postgrest client.
func NewStore(client *postgrest.Client, log *logrus.Entry) *Store {
	return &Store{client: client, log: log}
}

// NewClient builds the Postgrest client for a Supabase project.
func NewClient(supabaseURL, serviceKey string) *postgrest.Client {
	return postgrest.NewClient(supabaseURL+"/rest/v1", "", map[string]string{
		"apikey":        serviceKey,
		"Authorization": fmt.Sprintf("Bearer %s", serviceKey),
	})
}

// Insert persists one note, filling the id and timestamp when unset.
func (s *Store) Insert(note Note) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}

	_, _, err := s.client.From(notesTable).Insert(note, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("inserting note for %s: %w", note.SourceKey, err)
	}

	s.log.WithFields(logrus.Fields{
		"id":    note.ID,
		"title": note.Title,
	}).Info("note recorded")
	return nil
}
