// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Tally API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(registry, store, closer, hub, cfg)

# Endpoints

Health:

	GET /health

Polls:

	POST /polls             - Create poll (returns admin key)
	GET  /polls             - List open polls, ?name= to find one
	GET  /polls/{id}        - Poll info, open or closed
	GET  /polls/{id}/tally  - Live counts per candidate
	POST /polls/{id}/close  - Close and tabulate (requires X-Admin-Key)

Voting (requires X-Voter-ID):

	POST /polls/{id}/ballots - Submit a ballot

Results:

	GET /polls/{id}/results - Final result (closed only)
	GET /polls/{id}/live    - Websocket feed

# Handler Initialization

The router creates handler instances with dependency injection:

	pollHandler := handlers.NewPollHandler(registry, store, closer, cfg)
	votingHandler := handlers.NewVotingHandler(registry, store, hub)
	resultsHandler := handlers.NewResultsHandler(registry, store)
	liveHandler := handlers.NewLiveHandler(registry, store, hub)

The hub doubles as the tally broadcaster for voting.
*/
package router
