package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/leagues/{leagueID}", handler.GetLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/clubs", handler.ListClubsByLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/players", handler.ListPlayersByLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/fixtures", handler.ListFixturesByLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/fixtures/{fixtureID}", handler.GetFixtureByLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/transfers", handler.ListTransfersByLeague)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedMarketRoutes(mux, handler, verifier)
	registerAuthorizedFixtureRoutes(mux, handler, verifier)
	registerAuthorizedClubRoutes(mux, handler, verifier)
}

func registerAuthorizedMarketRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/leagues/{leagueID}/market/bids", RequireAuth(verifier, http.HandlerFunc(handler.PlaceBid)))
	mux.Handle("POST /v1/leagues/{leagueID}/market/snapshots", RequireAuth(verifier, http.HandlerFunc(handler.MarketSnapshot)))
	mux.Handle("POST /v1/leagues/{leagueID}/transfers/free-agents", RequireAuth(verifier, http.HandlerFunc(handler.BuyFreeAgent)))
	mux.Handle("POST /v1/leagues/{leagueID}/transfers/sales", RequireAuth(verifier, http.HandlerFunc(handler.SellPlayer)))
	mux.Handle("POST /v1/leagues/{leagueID}/transfers/release-clauses", RequireAuth(verifier, http.HandlerFunc(handler.PayReleaseClause)))
	mux.Handle("POST /v1/leagues/{leagueID}/transfers/swaps", RequireAuth(verifier, http.HandlerFunc(handler.SwapPlayers)))
	mux.Handle("POST /v1/leagues/{leagueID}/proposals", RequireAuth(verifier, http.HandlerFunc(handler.CreateProposal)))
	mux.Handle("GET /v1/leagues/{leagueID}/clubs/{clubID}/proposals", RequireAuth(verifier, http.HandlerFunc(handler.ListOpenProposals)))
	mux.Handle("POST /v1/leagues/{leagueID}/proposals/{proposalID}/accept", RequireAuth(verifier, http.HandlerFunc(handler.AcceptProposal)))
	mux.Handle("POST /v1/leagues/{leagueID}/proposals/{proposalID}/reject", RequireAuth(verifier, http.HandlerFunc(handler.RejectProposal)))
	mux.Handle("POST /v1/leagues/{leagueID}/proposals/{proposalID}/cancel", RequireAuth(verifier, http.HandlerFunc(handler.CancelProposal)))
}

func registerAuthorizedFixtureRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/leagues/{leagueID}/fixtures", RequireAuth(verifier, http.HandlerFunc(handler.CreateFixture)))
	mux.Handle("GET /v1/leagues/{leagueID}/fixtures/{fixtureID}/slots", RequireAuth(verifier, http.HandlerFunc(handler.AvailableSlots)))
	mux.Handle("POST /v1/leagues/{leagueID}/fixtures/{fixtureID}/schedule", RequireAuth(verifier, http.HandlerFunc(handler.ScheduleFixture)))
	mux.Handle("POST /v1/leagues/{leagueID}/fixtures/{fixtureID}/reschedule", RequireAuth(verifier, http.HandlerFunc(handler.RescheduleFixture)))
	mux.Handle("POST /v1/leagues/{leagueID}/fixtures/{fixtureID}/confirm", RequireAuth(verifier, http.HandlerFunc(handler.ConfirmFixture)))
	mux.Handle("POST /v1/leagues/{leagueID}/fixtures/{fixtureID}/check-in", RequireAuth(verifier, http.HandlerFunc(handler.CheckInFixture)))
	mux.Handle("POST /v1/leagues/{leagueID}/fixtures/{fixtureID}/score", RequireAuth(verifier, http.HandlerFunc(handler.SubmitScore)))
	mux.Handle("POST /v1/leagues/{leagueID}/fixtures/{fixtureID}/score/confirm", RequireAuth(verifier, http.HandlerFunc(handler.ConfirmScore)))
	mux.Handle("POST /v1/leagues/{leagueID}/fixtures/{fixtureID}/dispute", RequireAuth(verifier, http.HandlerFunc(handler.DisputeScore)))
	mux.Handle("POST /v1/leagues/{leagueID}/fixtures/{fixtureID}/cancel", RequireAuth(verifier, http.HandlerFunc(handler.CancelFixture)))
}

func registerAuthorizedClubRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/leagues/{leagueID}/clubs/{clubID}/finances", RequireAuth(verifier, http.HandlerFunc(handler.ClubFinances)))
	mux.Handle("GET /v1/leagues/{leagueID}/clubs/{clubID}/transfers", RequireAuth(verifier, http.HandlerFunc(handler.ListTransfersByClub)))
	mux.Handle("GET /v1/fixtures/{fixtureID}/clubs/{clubID}/payroll", RequireAuth(verifier, http.HandlerFunc(handler.PayrollStatement)))
	mux.Handle("GET /v1/availability", RequireAuth(verifier, http.HandlerFunc(handler.ListAvailability)))
	mux.Handle("PUT /v1/availability", RequireAuth(verifier, http.HandlerFunc(handler.ReplaceAvailability)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/finalize-auctions", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunFinalizeAuctionsJob)))
	mux.Handle("POST /v1/internal/jobs/auto-confirm-scores", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunAutoConfirmScoresJob)))
	mux.Handle("POST /v1/internal/jobs/settle-fixture", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSettleFixtureJob)))
	mux.Handle("POST /v1/internal/jobs/wallet-adjustments", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunWalletAdjustmentJob)))
	mux.Handle("POST /v1/internal/jobs/resolve-dispute", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunResolveDisputeJob)))
	mux.Handle("POST /v1/internal/jobs/walkover", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunWalkoverJob)))
}
