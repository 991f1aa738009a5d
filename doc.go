// Package goTeller is the account-access core of a terminal banking
// simulator.
//
// It authenticates an account number and secret pair, locks an account
// after repeated wrong secrets, hands out a token bound to a single live
// session, and lets the owner unlock a Locked account by answering
// knowledge-based questions. Deposits, withdrawals, statements and account
// closure only ever accept the token.
//
// # Anti-enumeration
//
// [Engine.Authenticate] returns the same [ErrAccountNotFound] value for an
// unknown account number and for a wrong secret. Presentation layers must
// render it as a single message.
//
// # Persistence
//
// Every change to an account's counter, status, secret or balance is saved
// through [Storage] before it becomes visible in memory. A failed save
// returns [ErrPersistence] and changes nothing.
//
// # Quick start
//
//	store, _ := jsonfile.Open("bank.json")
//	engine, err := goTeller.New().WithStorage(store).Build(ctx)
//	if err != nil { ... }
//	defer engine.Close()
//
//	sess, err := engine.Authenticate(ctx, "ACC-001", "pass1")
//	if err != nil { ... }
//	acct, err := engine.Resolve(ctx, sess.Token)
package goTeller
