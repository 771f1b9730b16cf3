// Package crypto implements the client-side credential protection primitives
// used before login and password-change requests are sent to the admin API.
//
// # Algorithms
//
//   - RSA-OAEP with SHA-256 (RFC 8017) and an empty label, using an SPKI
//     public key fetched from the server. Only the encrypt direction exists;
//     this client never holds a private key.
//
//   - SHA-256, lowercase hex encoded, for salted password hashes, request
//     signatures and response digests.
//
// # Limits
//
// RSA-OAEP can encrypt at most k - 2*32 - 2 bytes, where k is the modulus
// size in bytes (190 bytes for a 2048-bit key). Longer plaintexts fail with
// [ErrPlaintextTooLong] rather than being truncated.
//
// # Security Notes
//
// None of this replaces TLS. The hash/nonce/timestamp scheme only raises the
// cost of replaying a captured login request, and the response digest check
// is an integrity hint, not authentication.
//
// # PEM Input
//
// [NormalizeToBytes] accepts a full PEM block or the bare base64 payload.
// Delimiters and all whitespace are stripped before standard base64 decoding.
package crypto
