// Package mongo connects to MongoDB through go.mongodb.org/mongo-driver/v2.
//
// The platform uses it as an optional backend for the audit log
// (audit.MongoStorage). Configuration comes from the environment:
//
//	cfg := config.MustLoad[mongo.Config]()
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer db.Client().Disconnect(context.Background())
//
//	events := audit.NewMongoStorage(db, "audit_events")
//
// Healthcheck returns a ping probe for readiness endpoints. Connection
// failures are reported as ErrFailedToConnectToMongo joined with the driver
// error.
package mongo
