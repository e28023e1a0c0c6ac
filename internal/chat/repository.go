package chat

import (
	"database/sql"
	"fmt"
)

// Repository provides data access for chat messages.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a chat repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Send stores a new message and returns it.
func (r *Repository) Send(senderID, receiverID, propertyID int64, content string) (*Message, error) {
	if content == "" {
		return nil, fmt.Errorf("message content is required")
	}

	result, err := r.db.Exec(
		`INSERT INTO messages (sender_id, receiver_id, property_id, content) VALUES (?, ?, ?, ?)`,
		senderID, receiverID, propertyID, content,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	var m Message
	err = r.db.QueryRow(
		`SELECT m.id, m.sender_id, m.receiver_id, m.property_id, m.content, m.timestamp, m.read,
			u.first_name || ' ' || u.last_name
		 FROM messages m JOIN users u ON u.id = m.sender_id
		 WHERE m.id = ?`, id,
	).Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.PropertyID, &m.Content, &m.Timestamp, &m.Read, &m.SenderName)
	if err != nil {
		return nil, fmt.Errorf("reading back message: %w", err)
	}

	return &m, nil
}

// ListForProperty returns the property's messages visible to the given
// user (sender or receiver), oldest first. This is the poll endpoint's
// query; clients call it repeatedly and render the full thread.
func (r *Repository) ListForProperty(propertyID, userID int64) ([]*Message, error) {
	rows, err := r.db.Query(
		`SELECT m.id, m.sender_id, m.receiver_id, m.property_id, m.content, m.timestamp, m.read,
			u.first_name || ' ' || u.last_name
		 FROM messages m JOIN users u ON u.id = m.sender_id
		 WHERE m.property_id = ? AND (m.sender_id = ? OR m.receiver_id = ?)
		 ORDER BY m.timestamp, m.id`,
		propertyID, userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			fmt.Printf("warning: closing rows: %v\n", cerr)
		}
	}()

	var messages []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(
			&m.ID, &m.SenderID, &m.ReceiverID, &m.PropertyID,
			&m.Content, &m.Timestamp, &m.Read, &m.SenderName,
		); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, &m)
	}

	return messages, rows.Err()
}

// MarkRead flags all messages addressed to the user in a property thread.
func (r *Repository) MarkRead(propertyID, userID int64) error {
	if _, err := r.db.Exec(
		"UPDATE messages SET read = 1 WHERE property_id = ? AND receiver_id = ?",
		propertyID, userID,
	); err != nil {
		return fmt.Errorf("marking messages read: %w", err)
	}
	return nil
}

// Conversations returns one summary per property thread the user
// participates in, most recent activity first.
func (r *Repository) Conversations(userID int64) ([]*Conversation, error) {
	rows, err := r.db.Query(
		`SELECT m.property_id, pr.name, m.content, u.first_name || ' ' || u.last_name, m.timestamp,
			(SELECT COUNT(*) FROM messages um
			 WHERE um.property_id = m.property_id AND um.receiver_id = ? AND um.read = 0)
		 FROM messages m
		 JOIN properties pr ON pr.id = m.property_id
		 JOIN users u ON u.id = m.sender_id
		 WHERE m.id IN (
			SELECT MAX(id) FROM messages
			WHERE sender_id = ? OR receiver_id = ?
			GROUP BY property_id
		 )
		 ORDER BY m.timestamp DESC, m.id DESC`,
		userID, userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			fmt.Printf("warning: closing rows: %v\n", cerr)
		}
	}()

	var convs []*Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.PropertyID, &c.PropertyName, &c.LastMessage, &c.LastSender, &c.LastAt, &c.Unread); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		convs = append(convs, &c)
	}

	return convs, rows.Err()
}
