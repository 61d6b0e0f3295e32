package domain

// allowedTransitions is the directed graph of legal status moves. Cancellation
// is reachable from every pre-completion state. CloseJob deliberately bypasses
// this graph (see QuoteService.CloseJob), so completed does not appear as a
// target of every state here.
var allowedTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusPending:         {RequestStatusAssigned, RequestStatusCancelled},
	RequestStatusAssigned:        {RequestStatusInProgress, RequestStatusCancelled},
	RequestStatusInProgress:      {RequestStatusReportSubmitted, RequestStatusCancelled},
	RequestStatusReportSubmitted: {RequestStatusQuoted, RequestStatusCancelled},
	RequestStatusQuoted:          {RequestStatusQuoted, RequestStatusApproved, RequestStatusCancelled},
	RequestStatusApproved:        {RequestStatusCompleted, RequestStatusCancelled},
	RequestStatusCompleted:       {},
	RequestStatusCancelled:       {},
}

// CanTransition reports whether from -> to is a legal lifecycle move.
func CanTransition(from, to RequestStatus) bool {
	if from == to {
		return true
	}
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status admits no further transitions.
func IsTerminal(status RequestStatus) bool {
	return len(allowedTransitions[status]) == 0
}
