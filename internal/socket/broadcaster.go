package socket

import (
	"log"
)

// Broadcaster provides high-level methods for broadcasting events.
// A nil *Broadcaster is valid and drops everything.
type Broadcaster struct {
	hub *Hub
}

func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

func (b *Broadcaster) enabled() bool {
	return b != nil && b.hub != nil
}

// ============================================
// Lead Broadcasting
// ============================================

func (b *Broadcaster) BroadcastLeadCreated(designerID string, lead map[string]interface{}) {
	if !b.enabled() || designerID == "" {
		return
	}
	b.hub.SendToUser(designerID, MessageLeadCreated, lead)
}

func (b *Broadcaster) BroadcastLeadUpdated(leadID string, lead map[string]interface{}, changes []string, excludeUserID string) {
	if !b.enabled() {
		return
	}
	b.hub.SendToRoom(RoomLead+leadID, MessageLeadUpdated, map[string]interface{}{
		"lead":          lead,
		"changedFields": changes,
		"changedByUser": excludeUserID,
	}, excludeUserID)
}

func (b *Broadcaster) BroadcastLeadStatusChanged(leadID, oldStatus, newStatus, changedBy string) {
	if !b.enabled() {
		return
	}
	b.hub.SendToRoom(RoomLead+leadID, MessageLeadStatusChanged, map[string]interface{}{
		"leadId":        leadID,
		"oldStatus":     oldStatus,
		"newStatus":     newStatus,
		"changedByUser": changedBy,
	}, "")
}

// BroadcastLeadConverted tells lead watchers and the customer where the
// conversation continues.
func (b *Broadcaster) BroadcastLeadConverted(leadID, projectID, customerID string) {
	if !b.enabled() {
		return
	}
	payload := map[string]interface{}{
		"leadId":    leadID,
		"projectId": projectID,
	}
	log.Printf("📡 BroadcastLeadConverted: lead=%s project=%s", leadID, projectID)

	b.hub.SendToRoom(RoomLead+leadID, MessageLeadConverted, payload, "")
	if customerID != "" {
		b.hub.SendToUser(customerID, MessageLeadConverted, payload)
	}
}

func (b *Broadcaster) BroadcastLeadRejected(leadID, reason, customerID string) {
	if !b.enabled() {
		return
	}
	payload := map[string]interface{}{
		"leadId": leadID,
		"reason": reason,
	}
	b.hub.SendToRoom(RoomLead+leadID, MessageLeadRejected, payload, "")
	if customerID != "" {
		b.hub.SendToUser(customerID, MessageLeadRejected, payload)
	}
}

// ============================================
// Project Broadcasting
// ============================================

func (b *Broadcaster) BroadcastProjectStatusChanged(projectID, oldStatus, newStatus string, locked bool, changedBy string) {
	if !b.enabled() {
		return
	}
	room := RoomProject + projectID
	b.hub.SendToRoom(room, MessageProjectStatusChanged, map[string]interface{}{
		"projectId":     projectID,
		"oldStatus":     oldStatus,
		"newStatus":     newStatus,
		"isLocked":      locked,
		"changedByUser": changedBy,
	}, "")
	if locked {
		b.hub.SendToRoom(RoomChat+projectID, MessageProjectLocked, map[string]interface{}{
			"projectId": projectID,
		}, "")
	}
}

func (b *Broadcaster) BroadcastProjectUpdated(projectID string, changes []string, excludeUserID string) {
	if !b.enabled() {
		return
	}
	b.hub.SendToRoom(RoomProject+projectID, MessageProjectUpdated, map[string]interface{}{
		"projectId":     projectID,
		"changedFields": changes,
		"changedByUser": excludeUserID,
	}, excludeUserID)
}

// ============================================
// Quotation Broadcasting
// ============================================

func (b *Broadcaster) BroadcastQuoteSubmitted(projectID, quoteID string, version int) {
	if !b.enabled() {
		return
	}
	b.hub.SendToRoom(RoomProject+projectID, MessageQuoteSubmitted, map[string]interface{}{
		"projectId": projectID,
		"quoteId":   quoteID,
		"version":   version,
	}, "")
}

// BroadcastQuoteDecided notifies the designer who submitted the quotation.
func (b *Broadcaster) BroadcastQuoteDecided(designerID, projectID, quoteID, status string) {
	if !b.enabled() {
		return
	}
	payload := map[string]interface{}{
		"projectId": projectID,
		"quoteId":   quoteID,
		"status":    status,
	}
	if designerID != "" {
		b.hub.SendToUser(designerID, MessageQuoteDecided, payload)
	}
	b.hub.SendToRoom(RoomProject+projectID, MessageQuoteDecided, payload, designerID)
}

// ============================================
// Chat Broadcasting
// ============================================

func (b *Broadcaster) BroadcastChatMessage(chatID string, message map[string]interface{}, senderID string) {
	if !b.enabled() {
		return
	}
	b.hub.SendToRoom(RoomChat+chatID, MessageChatMessage, message, senderID)
}

func (b *Broadcaster) BroadcastChatRead(chatID, readerID string, count int64) {
	if !b.enabled() || count == 0 {
		return
	}
	b.hub.SendToRoom(RoomChat+chatID, MessageChatRead, map[string]interface{}{
		"chatId":   chatID,
		"readerId": readerID,
		"count":    count,
	}, readerID)
}

func (b *Broadcaster) BroadcastChatDeleted(chatID, messageID, senderID string) {
	if !b.enabled() {
		return
	}
	b.hub.SendToRoom(RoomChat+chatID, MessageChatDeleted, map[string]interface{}{
		"chatId":    chatID,
		"messageId": messageID,
	}, senderID)
}

// ============================================
// Utility Methods
// ============================================

func (b *Broadcaster) IsUserOnline(userID string) bool {
	if !b.enabled() {
		return false
	}
	return b.hub.IsUserOnline(userID)
}

func (b *Broadcaster) GetOnlineUsers() []string {
	if !b.enabled() {
		return nil
	}
	return b.hub.GetOnlineUsers()
}
