// Package session manages an authenticated identity across two storage
// tiers: an ephemeral tab-scoped tier and a persistent browser-scoped tier.
//
// A Store hides the tiers behind a single Get that applies precedence (the
// tab tier wins), inactivity timeout and absolute expiry. Invalid or corrupt
// records are removed as they are found. The Manager builds the lifecycle on
// top: SignIn and Remember create records, Check validates and refreshes,
// RecordActivity extends the idle window, SignOut wipes everything and Close
// ends the tab.
//
// # Usage
//
//	tab := session.NewMemoryStorage()
//	browser := session.NewRedisStorage(redisClient, session.WithRedisPrefix("leasekit:alice"))
//
//	bus := activity.NewMemoryBus(16)
//	mgr := session.NewFromConfig(cfg, tab, browser,
//		session.WithActivityBus(bus),
//		session.WithStateListener(func(s session.State, st session.Status) {
//			// update UI
//		}),
//	)
//
//	if err := mgr.SignIn(ctx, session.Identity{Email: "a@example.com"}, token); err != nil {
//		return err
//	}
//	go mgr.Run(ctx)
//
// Run checks once, then every CheckInterval, and records activity for every
// qualifying signal on the bus. Periodic checks do not count as activity.
//
// # Storage
//
// Records are stored as JSON under KeySession and KeyPersistentSession.
// Missing tab storage (a nil tab tier) reports ErrNoStorage, which the
// manager treats as unauthenticated. LegacyKeys are only ever deleted.
package session
