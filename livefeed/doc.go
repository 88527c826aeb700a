/*
Package livefeed maintains the subscription to the pushed "current occupancy"
record and exposes the latest snapshot.

The Client is a small state machine:

	Disconnected -> Connecting -> Connected
	Connected    -> Connecting   (transport error, retry scheduled)
	Connecting   -> Degraded     (retry budget spent; terminal)

A failed attempt n schedules the next one after n x BaseDelay. The attempt
counter goes back to zero once a snapshot is delivered. While degraded, the
last known snapshot (live or cached) keeps being reported.

Sources adapt a transport to the Subscribe callback contract. MQTTSource and
KafkaSource are provided.
*/
package livefeed
