// Package classifier exposes the safe entry points over the inference
// engine: validate, bind, invoke once, extract, always unbind.
//
// A Classifier owns one engine instance, one guest heap, one signal
// context and the guest-side result record. It is the unit of execution
// context: one goroutine per Classifier, any number of Classifiers per
// Engine. The signal context is bound at the start of every invocation
// and unconditionally cleared on every exit path, including engine
// failure, so a stale buffer reference can never outlive its call.
package classifier
