// Package apperrors defines the error taxonomy shared by the sampler, the
// metrics sources and the command line front end.
//
// Only two kinds of failure ever reach a caller: configuration errors at
// startup and ShutdownTimeoutError from Sampler.Stop. Everything a source
// reports during a cycle is absorbed by the sampler and replaced by a
// default value.
package apperrors
