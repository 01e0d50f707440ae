package messaging

// Subjects follow {service}.{kind}.{action}.
const (
	SubjectCompileJobs = "querybuilder.jobs.compile"
	SubjectAnalyzeJobs = "querybuilder.jobs.analyze"

	// SubjectSavedQueryEvents is published after a saved query is written or deleted.
	SubjectSavedQueryEvents = "querybuilder.events.saved_query"

	// SubjectHealthPing is used for round-trip latency probes.
	SubjectHealthPing = "_HEALTH.querybuilder.ping"
)

// QueueBuilderWorkers is the queue group shared by all builder instances, so
// each job is processed once.
const QueueBuilderWorkers = "querybuilder-workers"

// SavedQueryEventSubject returns the per-action event subject,
// e.g. querybuilder.events.saved_query.deleted.
func SavedQueryEventSubject(action string) string {
	return SubjectSavedQueryEvents + "." + action
}
