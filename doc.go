// Package mailadmin provides a Go client for the mail-admin console API.
//
// Its core is the credential protection layer that runs before a login or
// password change reaches the network: passwords are either encrypted
// with the server's RSA public key (RSA-OAEP, SHA-256) or hashed with a
// per-user salt and signed with a timestamp and nonce.
//
// Basic usage:
//
//	client, err := mailadmin.New(mailadmin.WithBaseURL("https://admin.example.com"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Hash and sign a login submission
//	sub, err := client.EncryptPassword("secret", "Alice")
//
//	// Encrypt a new password for the server
//	ciphertext, err := client.EncryptPasswordWithRSA(ctx, "n3w-secret")
//
//	// Or let the client do both
//	session, err := client.Login(ctx, "Alice", "secret")
//
// The server's public key is fetched once and reused for the life of the
// client. Concurrent first uses share one request. Call
// [Client.InvalidatePublicKey] after a server key rotation.
//
// This layer hardens credentials in transit; it does not replace TLS.
package mailadmin
