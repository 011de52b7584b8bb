/*
Package accountsdk is a Go client for the vidtab accounts service, and the
home of the wire types the service itself serialises.

# Client vs Session

  - Client: unauthenticated operations (register, login, refresh, health)
  - Session: operations that need an access token, with automatic refresh

	client := accountsdk.NewClient("http://localhost:8000")

	account, err := client.Register(ctx, accountsdk.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice Liddell",
		Password: "Secret1",
		Avatar:   accountsdk.File{Name: "me.png", ContentType: "image/png", Content: f},
	})

	session, err := client.AuthenticateWithPassword(ctx, accountsdk.LoginRequest{
		Username: "alice",
		Password: "Secret1",
	})

	me, err := session.CurrentUser(ctx)

# Refresh tokens

Each refresh token can be used once. A Session renews its access token about
thirty seconds before expiry and stores the rotated refresh token. Sharing one
refresh token between two Sessions will log one of them out.

# Errors

Failures from the service are returned as *APIError, carrying the HTTP status
and the server's message:

	if accountsdk.IsStatus(err, http.StatusUnauthorized) {
		// log in again
	}
*/
package accountsdk
