package resolver

import (
	"whatsorders/internal/models"
)

// Resolver decides which company a message belongs to. It is a pure
// decision component: it reads the message and its context window and
// returns a verdict, never touching storage.
type Resolver struct {
	aliases *AliasTable
}

func New(aliases *AliasTable) *Resolver {
	return &Resolver{aliases: aliases}
}

// Aliases exposes the underlying alias table.
func (r *Resolver) Aliases() *AliasTable {
	return r.aliases
}

// Resolve applies the assignment precedence, first hit wins:
//
//  1. an existing manual assignment is returned unchanged;
//  2. a direct alias match against the message body;
//  3. the nearest prior context message (most recent first) that either
//     carries an effective company or whose body yields an alias match;
//  4. nil; a message with no resolvable company is a valid state, never
//     a placeholder value.
func (r *Resolver) Resolve(msg *models.Message, recent []*models.Message) *int64 {
	if msg.ManualCompanyID != nil {
		id := *msg.ManualCompanyID
		return &id
	}

	if id := r.aliases.Resolve(msg.Body); id != nil {
		return id
	}

	for _, prior := range recent {
		if id := prior.EffectiveCompanyID(); id != nil {
			v := *id
			return &v
		}
		if id := r.aliases.Resolve(prior.Body); id != nil {
			return id
		}
	}

	return nil
}
