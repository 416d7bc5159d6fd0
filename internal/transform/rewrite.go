package transform

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/bethropolis/logprefix/internal/buffer"
	"github.com/bethropolis/logprefix/internal/syntax"
)

// ReceiverText returns the verbatim source of the receiver of a member
// expression callee, whatever its shape.
func ReceiverText(callee *sitter.Node, src []byte) string {
	if callee == nil {
		return ""
	}
	return syntax.Text(callee.ChildByFieldName("object"), src)
}

// rewriteArguments wraps the argument span of site so that
// recv.m(a, b) becomes recv.m(...recv.prefix(a, b)). Everything between the
// first and last argument, comments included, is kept verbatim. site must
// have at least one argument.
func rewriteArguments(site CallSite, receiverText, prefixMethod string, buf buffer.Buffer) error {
	first := site.Arguments[0]
	last := site.Arguments[len(site.Arguments)-1]
	prefix := "..." + receiverText + "." + prefixMethod + "("
	return buf.Wrap(first.StartByte(), last.EndByte(), prefix, ")")
}
