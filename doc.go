// Package pace is the data plane of a network throughput and latency
// measurement tool: blocking socket primitives which loop partial
// transfers to completion, retry transient errno conditions, honor a
// shared cooperative interrupt, and issue kernel-scheduled, QoS-tagged
// sends through sendmsg control data. Packet lengths come from the
// markov subpackage; everything else a full benchmarking tool needs
// (orchestration, statistics, TLS) lives outside this module.
package pace
