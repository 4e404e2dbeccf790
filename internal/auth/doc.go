// Package auth implements the account and token layer for ClassKit.
//
// It covers three concerns:
//
//   - Password hashing with Argon2id in PHC string format, including
//     parameter upgrades: hashes created under older cost settings are
//     transparently re-hashed on the next successful login.
//   - Stateless JWT issuance and validation (HS256). Access and refresh
//     tokens carry a "type" claim so one can never stand in for the other.
//     Validation fails closed: every failure mode surfaces as the same
//     ErrTokenInvalid so callers cannot distinguish expired from forged.
//   - The account flow itself (register, login, refresh) in Service.
//     Login is deliberately indistinguishable for unknown emails and wrong
//     passwords, including running a dummy hash verification so response
//     timing does not reveal whether the account exists.
//
// Plaintext passwords, password hashes, and signed tokens must never be
// logged. The Identity type excludes PasswordHash from JSON serialisation.
package auth
