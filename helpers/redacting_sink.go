package helpers

import (
	"io"
	"regexp"
	"sync"

	"code.cloudfoundry.org/lager/v3"
)

// dbURLPattern matches postgres/mysql style URLs so embedded credentials are
// stripped before a log line reaches a sink.
const dbURLPattern = `^([a-z]+[a-z0-9+]*):\/\/(.+):(.+)@([\da-zA-Z\.-]+)(:[\d]{4,5})?\/(.+)`

var redactedKeyPatterns = []string{"[Pp]wd", "[Pp]ass", "[Ss]ecret", "[Tt]oken"}

type redactingSink struct {
	writer         io.Writer
	minLogLevel    lager.LogLevel
	writeL         sync.Mutex
	jsonRedacter   *lager.JSONRedacter
	urlCredMatcher *regexp.Regexp
}

func NewRedactingSink(writer io.Writer, minLogLevel lager.LogLevel) (lager.Sink, error) {
	jsonRedacter, err := lager.NewJSONRedacter(redactedKeyPatterns, nil)
	if err != nil {
		return nil, err
	}
	urlCredMatcher, err := regexp.Compile(dbURLPattern)
	if err != nil {
		return nil, err
	}
	return &redactingSink{
		writer:         writer,
		minLogLevel:    minLogLevel,
		jsonRedacter:   jsonRedacter,
		urlCredMatcher: urlCredMatcher,
	}, nil
}

func (sink *redactingSink) Log(log lager.LogFormat) {
	if log.LogLevel < sink.minLogLevel {
		return
	}

	for k, v := range log.Data {
		if s, ok := v.(string); ok && sink.urlCredMatcher.MatchString(s) {
			log.Data[k] = sink.urlCredMatcher.ReplaceAllString(s, `$1://$2:*REDACTED*@$4$5/$6`)
		}
	}

	redacted := sink.jsonRedacter.Redact(log.ToJSON())

	sink.writeL.Lock()
	defer sink.writeL.Unlock()
	_, _ = sink.writer.Write(redacted)
	_, _ = sink.writer.Write([]byte("\n"))
}
