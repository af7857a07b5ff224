package cc

import (
	"fmt"
	"os"
)

// RuntimePrelude is injected ahead of the re-parse that precedes the
// async rewrite (§4.7 step 6), forward-declaring every runtime type
// and helper the lowered source can now reference (§6).
const RuntimePrelude = `
typedef enum { CC_FUTURE_PENDING, CC_FUTURE_READY } CCFutureStatus;
typedef struct CCTaskIntptr CCTaskIntptr;
CCTaskIntptr cc_task_intptr_make_poll_ex(void *frame, CCFutureStatus (*poll)(void *, intptr_t *, int *), void (*drop)(void *));
CCFutureStatus cc_task_intptr_poll(CCTaskIntptr *t, intptr_t *out, int *err);
void cc_task_intptr_free(CCTaskIntptr *t);

typedef struct CCChanTx CCChanTx;
typedef struct CCChanRx CCChanRx;
typedef struct CCChanMatchCase CCChanMatchCase;
CCChanMatchCase cc_chan_match_case_send(CCChanTx *tx, void *val);
CCChanMatchCase cc_chan_match_case_recv(CCChanRx *rx, void *ptr);
CCChanMatchCase cc_chan_match_case_cancel(void);
int cc_chan_match_select(CCChanMatchCase *cases, int n);
int cc_chan_pair_create_full(int capacity, int mode, int backpressure, int elemSize, int flags, int topology, CCChanTx *tx, CCChanRx *rx);

typedef struct CCSlice CCSlice;
typedef struct CCSliceUnique CCSliceUnique;

typedef struct CCDeadline CCDeadline;
CCDeadline cc_deadline_make(long long nanos);
void cc_deadline_push(CCDeadline *d);
void cc_deadline_pop(void);
CCDeadline cc_current_deadline(void);
int cc_is_cancelled(void);

#define __CC_OPTIONAL(T) CCOptional_##T
#define __CC_RESULT(T, E) CCResult_##T##_##E
#define cc_unwrap_opt(o) ((o).value)
#define cc_try(e) (e)

typedef struct CCClosure1 CCClosure1;
typedef struct CCClosure2 CCClosure2;
intptr_t cc_closure1_call(CCClosure1 c, intptr_t a);
intptr_t cc_closure2_call(CCClosure2 c, intptr_t a, intptr_t b);
`

// PreprocessSimple injects #line directives only (§6
// preprocess_simple), establishing provenance before any CC-specific
// rewriting begins.
func PreprocessSimple(source, filename string) string {
	return InjectLineDirectives(source, filename)
}

// InjectLineDirectives prepends a `#line 1 "filename"` marker so every
// downstream text pass, and any compiler error on the final emitted
// C, reports CC source coordinates rather than offsets into whatever
// intermediate buffer produced them.
func InjectLineDirectives(source, filename string) string {
	return fmt.Sprintf("#line 1 %q\n%s", filename, source)
}

// InjectPrelude appends RuntimePrelude ahead of source, used only
// before the async rewriter's fresh re-parse (§4.7 step 6) so earlier
// passes don't see runtime symbols they don't need.
func InjectPrelude(source string) string {
	return RuntimePrelude + "\n" + source
}

// PreprocessFile is the file-mode variant of PreprocessSimple used by
// the legacy fallback path (§6): read path, inject #line, write to
// outpath.
func PreprocessFile(path, outpath string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return NewIOError("can't read source file: "+err.Error(), Span{})
	}
	out := PreprocessSimple(string(data), path)
	if err := os.WriteFile(outpath, []byte(out), 0o644); err != nil {
		return NewIOError("can't write preprocessed file: "+err.Error(), Span{})
	}
	return nil
}
