// Package http provides HTTP handlers and middleware for the wedding guest portal.
//
// The router exposes the following endpoints:
//   - POST /sessions: exchanges an access code for a session. Body: {"code"}.
//     Response: {"token","expires_at","principal":{"access_code","is_admin"}} with the
//     token also surfaced via the `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current: revokes the current session and clears the cookie.
//   - GET /healthz: unauthenticated liveness probe that pings the database.
//   - GET /settings, PUT /settings, GET /dashboard, GET /countdown: event settings,
//     administrator statistics and the countdown to the event.
//   - GET /guests, POST /guests, PUT /guests/{code}, GET /guests/{code}/qr,
//     GET /guests/cards.pdf, POST /guests/import: guest administration. PUT applies
//     a partial update where an explicit null clears seat_number, selected_food or
//     selected_drink.
//   - GET /access-codes, POST /access-codes, POST /access-codes/{code}/claim: pending
//     access codes. Sending `Accept: text/csv` to POST downloads the batch as CSV.
//   - GET /me, POST /me/arrival, GET /seats: the guest's own views.
//   - GET, POST and DELETE /{id} on /gallery, /menu/food, /menu/drinks, /asoebi,
//     /registry and /wedding-party, plus DELETE /collections/{collection}/{index}
//     for removal by display position and GET /asoebi/{id}/order-link.
//   - GET /payment-details, PUT /payment-details, POST /admin/reload.
//
// Every endpoint except POST /sessions and GET /healthz requires a session.
// Request/response DTOs live alongside their respective handlers.
package http
