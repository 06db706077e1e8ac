// Package unpacker drives archives through the sequential unpack pipeline.
//
// The Pipeline pops candidates from the tail of its queue and decodes them
// one at a time, never overlapping, while firing caller-visible lifecycle
// hooks (before-unpack, before-process, processed, completed). The
// "processed" announcement for an archive is deliberately delayed until just
// before the next decode starts: subpackage realignment runs inside that
// hook, so the delay guarantees realignment for archive k completes strictly
// before archive k+1 is decoded and can overwrite the pending request.
//
// After the queue drains, the Service merges every non-main unpack directory
// into the main package, injects the plugin require when one was detected,
// and writes the IDE-compatibility project config. Discovery failures and
// repeat realign/merge attempts degrade to logged no-ops; decoder and
// filesystem failures abort the run and propagate to the caller.
package unpacker
