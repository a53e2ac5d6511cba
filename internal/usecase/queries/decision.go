package queries

import "context"

type DecisionReadStore interface {
	ListRecent(ctx context.Context, limit int) ([]*DecisionView, error)
}

type DecisionQueries interface {
	Recent(ctx context.Context, limit int) ([]*DecisionView, error)
}

type decisionQueriesImpl struct {
	store DecisionReadStore
}

func NewDecisionQueries(store DecisionReadStore) DecisionQueries {
	return &decisionQueriesImpl{store: store}
}

const defaultDecisionLimit = 50

func (q *decisionQueriesImpl) Recent(ctx context.Context, limit int) ([]*DecisionView, error) {
	if limit <= 0 {
		limit = defaultDecisionLimit
	}
	return q.store.ListRecent(ctx, limit)
}
