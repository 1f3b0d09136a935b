package ledger

import (
	"bytes"
	"fmt"

	"github.com/tendermint/tendermint/libs/log"
)

const programLogPrefix = "Program log: "

// programLog collects the lines programs emit while a transaction runs.
// They are returned to the submitter with the result.
type programLog struct {
	lines []string
}

// programLogger records Info and Error lines into the transaction log and
// forwards everything to the node logger.
type programLogger struct {
	log     *programLog
	next    log.Logger
	keyvals []interface{}
}

var _ log.Logger = programLogger{}

func (p programLogger) Debug(msg string, keyvals ...interface{}) {
	p.next.Debug(msg, keyvals...)
}

func (p programLogger) Info(msg string, keyvals ...interface{}) {
	p.record(msg, keyvals)
	p.next.Info(msg, keyvals...)
}

func (p programLogger) Error(msg string, keyvals ...interface{}) {
	p.record(msg, keyvals)
	p.next.Error(msg, keyvals...)
}

func (p programLogger) With(keyvals ...interface{}) log.Logger {
	kv := make([]interface{}, 0, len(p.keyvals)+len(keyvals))
	kv = append(kv, p.keyvals...)
	kv = append(kv, keyvals...)
	return programLogger{
		log:     p.log,
		next:    p.next.With(keyvals...),
		keyvals: kv,
	}
}

func (p programLogger) record(msg string, keyvals []interface{}) {
	var buf bytes.Buffer
	buf.WriteString(programLogPrefix)
	buf.WriteString(msg)
	writeKeyvals(&buf, p.keyvals)
	writeKeyvals(&buf, keyvals)
	p.log.lines = append(p.log.lines, buf.String())
}

func writeKeyvals(buf *bytes.Buffer, keyvals []interface{}) {
	for i := 0; i < len(keyvals); i += 2 {
		var val interface{} = "(missing)"
		if i+1 < len(keyvals) {
			val = keyvals[i+1]
		}
		fmt.Fprintf(buf, " %v=%v", keyvals[i], val)
	}
}
