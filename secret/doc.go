// Package secret verifies presented account secrets against stored values.
//
// Stored values are either legacy plaintext, compared through [Plain], or
// argon2id PHC strings produced by [Argon2]. [Auto] picks between them per
// record.
package secret
