// Package portal is the composition root of the client engagement engine.
//
// It connects the core domain (records, notifications, payments, sessions)
// with the storage adapters: a JSON or YAML record file, SQLite/Postgres via
// gorm, an S3 object, or memory.
//
// Every mutation goes through core.Service, which keeps the derived fields
// consistent: progress from the timeline, payment status from the amounts,
// and the notification feeds on both sides of the admin/client boundary.
//
// Usage:
//
//	svc, err := portal.New("./portal.json",
//		portal.WithLogger(logger),
//		portal.WithAdminCredentials("admin@firm.test", hash),
//	)
//
//	res, err := svc.RecordPayment(ctx, "c1", 500)
package portal
