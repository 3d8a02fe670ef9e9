package signaling

// Room groups the participants of a single call attempt, keyed by the
// appointment identifier. A room exists only while it has at least one
// participant: it is created on first join and deleted on last leave.
type Room struct {
	// ID is the appointment key supplied by the booking flow.
	ID string

	// Participants in join order.
	Participants []*Client
}

// Contains reports whether the client is a member of the room.
func (r *Room) Contains(c *Client) bool {
	for _, p := range r.Participants {
		if p == c {
			return true
		}
	}
	return false
}

// Add appends the client to the member list.
func (r *Room) Add(c *Client) {
	r.Participants = append(r.Participants, c)
}

// Remove deletes the client from the member list, preserving join order.
func (r *Room) Remove(c *Client) {
	for i, p := range r.Participants {
		if p == c {
			r.Participants = append(r.Participants[:i], r.Participants[i+1:]...)
			return
		}
	}
}

// Others returns every member except the given client, in join order.
func (r *Room) Others(c *Client) []*Client {
	others := make([]*Client, 0, len(r.Participants))
	for _, p := range r.Participants {
		if p != c {
			others = append(others, p)
		}
	}
	return others
}
