package email

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// WorkbookHandler saves xlsx attachments of dataset mails into the data
// directory. Already-seen UIDs are skipped so a re-check of the mailbox
// does not rewrite the same workbook.
type WorkbookHandler struct {
	TargetSubject string
	DataDir       string
	processedUIDs map[uint32]bool
	mu            sync.RWMutex
}

func NewWorkbookHandler(subject, dataDir string) *WorkbookHandler {
	return &WorkbookHandler{
		TargetSubject: subject,
		DataDir:       dataDir,
		processedUIDs: make(map[uint32]bool),
	}
}

func (h *WorkbookHandler) isProcessed(uid uint32) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.processedUIDs[uid]
}

func (h *WorkbookHandler) markAsProcessed(uid uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.processedUIDs[uid] = true
}

// Handle saves the mail's xlsx attachments and returns their paths.
func (h *WorkbookHandler) Handle(email *Email) ([]string, error) {
	if email == nil || h.isProcessed(email.UID) {
		return nil, nil
	}

	if !strings.Contains(email.Subject, h.TargetSubject) {
		return nil, nil
	}

	if err := os.MkdirAll(h.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	var saved []string
	for _, attachment := range email.Attachments {
		if filepath.Ext(attachment.Filename) != ".xlsx" {
			continue
		}

		filePath := filepath.Join(h.DataDir, attachment.Filename)
		if err := os.WriteFile(filePath, attachment.Content, 0644); err != nil {
			return saved, fmt.Errorf("save attachment %s: %w", attachment.Filename, err)
		}
		saved = append(saved, filePath)
	}

	if len(saved) > 0 {
		h.markAsProcessed(email.UID)
	}

	return saved, nil
}
