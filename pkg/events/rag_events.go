package events

const (
	QuestionAnswered = "QUESTION_ANSWERED"
	DocumentIndexed  = "DOCUMENT_INDEXED"
	DocumentDeleted  = "DOCUMENT_DELETED"
)

func NewQuestionAnswered(questionId, userId uint, confidence float64, processingMs int64) BaseEvent {
	return newEvent(QuestionAnswered, map[string]interface{}{
		"question_id":        questionId,
		"user_id":            userId,
		"confidence_score":   confidence,
		"processing_time_ms": processingMs,
	})
}

func NewDocumentIndexed(fileId uint, contentHash, status string, chunkCount int) BaseEvent {
	return newEvent(DocumentIndexed, map[string]interface{}{
		"file_id":      fileId,
		"content_hash": contentHash,
		"status":       status,
		"chunk_count":  chunkCount,
	})
}

func NewDocumentDeleted(fileId, userId uint) BaseEvent {
	return newEvent(DocumentDeleted, map[string]interface{}{
		"file_id": fileId,
		"user_id": userId,
	})
}

// FileID reads a numeric file_id out of a decoded payload; JSON numbers arrive as float64.
func FileID(e Event) (uint, bool) {
	switch v := e.Payload()["file_id"].(type) {
	case float64:
		return uint(v), v >= 0
	case uint:
		return v, true
	case int:
		return uint(v), v >= 0
	default:
		return 0, false
	}
}
