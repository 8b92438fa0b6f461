package database

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tickethub/config"
	"tickethub/models"
)

// ArchiveStore is the local sqlite journal of closed-ticket transcripts.
type ArchiveStore struct {
	Db *gorm.DB
}

// Archive is the global archive instance
var Archive *ArchiveStore

// ConnectArchive opens the sqlite archive and runs migrations.
func ConnectArchive() {
	db, err := gorm.Open(sqlite.Open(config.AppConfig.ArchiveDBName), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to open archive database: %v", err)
	}

	if err := db.AutoMigrate(&models.ArchivedTicket{}); err != nil {
		log.Fatalf("Archive migration failed: %v", err)
	}

	Archive = &ArchiveStore{Db: db}
}

// ArchiveTicket persists a closed ticket together with its transcript.
// A replayed close event for the same (ticket, closedAt) pair is a no-op.
func (a *ArchiveStore) ArchiveTicket(ticket *models.Ticket, transcript []models.Message) error {
	raw, err := json.Marshal(transcript)
	if err != nil {
		return err
	}

	record := models.ArchivedTicket{
		ArchiveID:      uuid.NewString(),
		TicketID:       ticket.ID,
		ServerID:       ticket.ServerID,
		ThreadID:       ticket.ThreadID,
		OpenerID:       ticket.OpenerID,
		OpenerUsername: ticket.OpenerUsername,
		Title:          ticket.Title,
		MessageCount:   len(transcript),
		Transcript:     string(raw),
	}
	if ticket.ClosedAt != nil {
		record.ClosedAt = *ticket.ClosedAt
	}

	if err := a.Db.Create(&record).Error; err != nil {
		// Unique index collision means this close transition was already archived.
		var existing models.ArchivedTicket
		if a.Db.Where("ticket_id = ? AND closed_at = ?", record.TicketID, record.ClosedAt).
			First(&existing).Error == nil {
			return nil
		}
		return err
	}
	return nil
}

// ArchivesByTicketID returns all archived transcripts of one ticket, newest first.
func (a *ArchiveStore) ArchivesByTicketID(ticketID string) ([]models.ArchivedTicket, error) {
	var records []models.ArchivedTicket
	err := a.Db.Where("ticket_id = ?", ticketID).Order("closed_at DESC").Find(&records).Error
	return records, err
}
