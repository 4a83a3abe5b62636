package ledger

import (
	"sort"
	"time"

	"github.com/grupo123/gameday-api/internal/models"
)

// Roster is the read-only projection moderators use as a copy-paste-ready
// attendance sheet. It never writes anything back: promotions it implies
// stay uncommitted until ProcessWaitingList runs.
type Roster struct {
	Players  []RosterEntry `json:"players"`
	Overflow []RosterEntry `json:"overflow"`
}

type RosterEntry struct {
	UserID uint   `json:"user_id,omitempty"`
	Name   string `json:"name"`
	Source string `json:"source"`
}

const (
	SourceConfirmed   = "confirmed"
	SourceWaitingList = "waiting_list"
	SourceGuest       = "guest"
)

type rosterCandidate struct {
	entry RosterEntry
	at    time.Time
	seq   uint
}

// BuildRoster seats the first maxPlayers confirmations, then fills the
// remaining slots from the waiting list (oldest first), then from guests
// (oldest first). Whatever does not fit lands in Overflow, in the same
// order it would have been seated.
func BuildRoster(maxPlayers int, confirmations []models.Confirmation, waiting []models.WaitingListEntry, guests []models.Guest) Roster {
	seat := func(cands []rosterCandidate, roster *Roster) {
		sort.SliceStable(cands, func(i, j int) bool {
			if !cands[i].at.Equal(cands[j].at) {
				return cands[i].at.Before(cands[j].at)
			}
			return cands[i].seq < cands[j].seq
		})
		for _, c := range cands {
			if len(roster.Players) < maxPlayers {
				roster.Players = append(roster.Players, c.entry)
			} else {
				roster.Overflow = append(roster.Overflow, c.entry)
			}
		}
	}

	roster := Roster{Players: []RosterEntry{}, Overflow: []RosterEntry{}}

	confirmed := make([]rosterCandidate, 0, len(confirmations))
	for _, c := range confirmations {
		confirmed = append(confirmed, rosterCandidate{
			entry: RosterEntry{UserID: c.UserID, Name: displayName(c.User), Source: SourceConfirmed},
			at:    c.CreatedAt,
			seq:   c.ID,
		})
	}
	seat(confirmed, &roster)

	queued := make([]rosterCandidate, 0, len(waiting))
	for _, w := range waiting {
		queued = append(queued, rosterCandidate{
			entry: RosterEntry{UserID: w.UserID, Name: displayName(w.User), Source: SourceWaitingList},
			at:    w.CreatedAt,
			seq:   w.ID,
		})
	}
	seat(queued, &roster)

	invited := make([]rosterCandidate, 0, len(guests))
	for _, g := range guests {
		invited = append(invited, rosterCandidate{
			entry: RosterEntry{Name: g.Name, Source: SourceGuest},
			at:    g.CreatedAt,
			seq:   g.ID,
		})
	}
	seat(invited, &roster)

	return roster
}

func displayName(u models.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}
