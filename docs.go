/*

Package statsd provides a client that sends counters, gauges, sets and timers to a
StatsD compatible aggregator over UDP.

Every metric is encoded as one line of the statsd protocol:

	<namespace>.<bucket>:<value>|<type>[|@<sample rate>]

Metrics are either sent immediately, one datagram each, or collected in a fixed
size batch that is written as a single datagram by SendBatch. Delivery is fire
and forget: the client neither retries nor waits for acknowledgement, but every
send error is returned to the caller.

Example

The following sends one counter immediately to a statsd server listening on the
default port 8125:

	client, err := statsd.NewClient(statsd.Config{Host: "statsd", Namespace: "myapp"})
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	client.Increment("logins")

Batching is driven by the caller:

	client.AddToBatch(statsd.Gauge, "queue.depth", 42, 1)
	client.AddToBatch(statsd.Timing, "db.query", 12, 0.25)
	client.SendBatch()

A Client is not safe for concurrent use.

*/
package statsd
