package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/julianstephens/peakstreak/internal/constants"
	"github.com/julianstephens/peakstreak/internal/models"
	"github.com/julianstephens/peakstreak/internal/storage"
)

var (
	// ErrUnsupportedMedia is returned for attachments that are not images.
	ErrUnsupportedMedia = errors.New("unsupported media type")
	// ErrMediaTooLarge is returned for attachments over the size limit.
	ErrMediaTooLarge = errors.New("media exceeds size limit")
)

// AttachMedia stores an image on the day containing at, creating a
// completed entry for that day if needed. The content type is sniffed from
// the data, not trusted from the caller.
func (l *Ledger) AttachMedia(habitID string, at time.Time, data []byte) (models.Media, error) {
	if len(data) == 0 {
		return models.Media{}, fmt.Errorf("%w: empty payload", ErrUnsupportedMedia)
	}
	if len(data) > constants.MaxMediaBytes {
		return models.Media{}, fmt.Errorf("%w: %d bytes", ErrMediaTooLarge, len(data))
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return models.Media{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mtype.String())
	}

	e, _, err := l.getOrCreate(habitID, l.Day(at))
	if err != nil {
		return models.Media{}, err
	}

	m := models.Media{
		ID:          uuid.New().String(),
		EntryID:     e.ID,
		ContentType: mtype.String(),
		Data:        data,
		CreatedAt:   l.now(),
	}
	if err := l.store.AddMedia(m); err != nil {
		return models.Media{}, fmt.Errorf("failed to store media: %w", err)
	}
	l.changed()
	return m, nil
}

// RemoveMedia deletes one attachment of the day containing at. An entry
// left incomplete and unannotated is removed as well.
func (l *Ledger) RemoveMedia(habitID string, at time.Time, mediaID string) error {
	day := l.Day(at)
	e, ok, err := l.lookup(habitID, day)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no entry on %s: %w", day, storage.ErrNotFound)
	}

	remaining := e.Media[:0:0]
	found := false
	for _, m := range e.Media {
		if m.ID == mediaID {
			found = true
			continue
		}
		remaining = append(remaining, m)
	}
	if !found {
		return fmt.Errorf("media %s on %s: %w", mediaID, day, storage.ErrNotFound)
	}

	if err := l.store.DeleteMedia(mediaID); err != nil {
		return err
	}
	e.Media = remaining
	if !e.Completed && !e.Annotated() {
		if err := l.store.DeleteHabitEntry(e.ID); err != nil {
			return err
		}
	}
	l.changed()
	return nil
}

// HasMedia reports whether the day containing at has any attachment.
func (l *Ledger) HasMedia(habitID string, at time.Time) (bool, error) {
	e, ok, err := l.lookup(habitID, l.Day(at))
	if err != nil {
		return false, err
	}
	return ok && e.HasMedia(), nil
}

// EntriesWithMedia returns the habit's entries holding media, newest first.
func (l *Ledger) EntriesWithMedia(habitID string) ([]models.HabitEntry, error) {
	return l.store.GetEntriesWithMedia(habitID)
}
