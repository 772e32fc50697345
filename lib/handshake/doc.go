// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package handshake implements the three-message protocol a being
// uses to prove possession of its keys to an identity provider (IDP)
// without a shared secret.
//
//	being                                IDP
//	  | -- AuthRequest ----------------->  |  VerifyAuthRequest
//	  |                                    |  CreateIdpChallenge
//	  | <---------------- IdpChallenge --  |
//	  CreateChallengeResponse              |
//	  | -- ChallengeResponse ----------->  |  VerifyChallengeResponse
//
// # Auth request
//
// The being signs the canonical auth message
//
//	AuthenticationContext || utf8(signingPublicKey) || utf8(encryptionPublicKey) || intent
//
// with its Ed25519 signing key. The request carries a Base64 echo of
// those bytes as a transport tamper check, but verifiers never trust
// it: [VerifyAuthRequest] rebuilds the message from the payload fields
// before checking the signature.
//
// # IDP challenge
//
// The IDP draws a random nonce and challenge ID and generates an
// ephemeral Ed25519 key. It signs the CBOR payload {challenge ID,
// nonce} with that key, appends the 64-byte signature, and seals the
// result to the being's age encryption key:
//
//	age( [CBOR payload bytes] [64-byte Ed25519 signature] )
//
// The public [IdpChallenge] goes to the being. The secret twin,
// [IdpChallengeRecord], holds the plaintext nonce and the ephemeral
// private key and must be persisted by the caller until the response
// arrives. It is consumed exactly once.
//
// # Challenge response
//
// The being decrypts the challenge, checks the embedded signature and
// challenge ID, and signs the canonical challenge text
//
//	AuthenticationContext + "::" + challengeID + "::" + nonce
//
// The text form is deliberately unlike the byte-concatenated auth
// message, so a signature from one phase can never verify in the
// other.
//
// # Result shapes
//
// [VerifyAuthRequest] returns an error: a bad auth request is a
// protocol violation. [VerifyChallengeResponse] returns a bool: a bad
// proof is expected adversarial input, and callers handle every kind
// of invalid proof the same way.
//
// Every function here is a pure function of its arguments plus fresh
// randomness. Nothing in the package holds state.
package handshake
