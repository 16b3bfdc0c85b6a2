package metadata

// --- SQLite Keys ---
// These keys are used for the 'key' column in the 'metadata' table.
const (
	// CurrentElectionIDKey stores the ID of the election currently accepting
	// ballots. It is written when an admin starts an election and cleared when
	// the election is deleted.
	CurrentElectionIDKey = "current_election_id"

	// LastTallyRebuildVoteIDKey stores the ID of the last vote record that was
	// included in the last full tally cache rebuild.
	LastTallyRebuildVoteIDKey = "last_tally_rebuild_vote_id"
)
