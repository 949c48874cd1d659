package complexity

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codelantern/lantern/pkg/parser"
)

// firstFunctionBody parses source and returns the body node of the first
// function definition found.
func firstFunctionBody(t *testing.T, source string, lang parser.Language) (*sitter.Node, []byte) {
	t.Helper()

	psr := parser.New()
	t.Cleanup(psr.Close)

	result, err := psr.Parse(context.Background(), []byte(source), lang, "test")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	fnTypes := make(map[string]bool)
	for _, ft := range parser.FunctionNodeTypes(lang) {
		fnTypes[ft] = true
	}

	var body *sitter.Node
	parser.WalkTyped(result.Tree.RootNode(), result.Source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if body != nil {
			return false
		}
		if fnTypes[nodeType] {
			body = n.ChildByFieldName("body")
			return false
		}
		return true
	})
	if body == nil {
		t.Fatalf("no function body found in source:\n%s", source)
	}
	return body, result.Source
}

func TestScore_NilBody(t *testing.T) {
	if got := Score(nil, nil, parser.LangPython); got != 1 {
		t.Errorf("Score(nil) = %d, want 1", got)
	}
}

func TestScore_StraightLine(t *testing.T) {
	body, src := firstFunctionBody(t, "def f():\n    x = 1\n    return x\n", parser.LangPython)
	if got := Score(body, src, parser.LangPython); got != 1 {
		t.Errorf("straight-line function = %d, want 1", got)
	}
}

func TestScore_IfAndFor(t *testing.T) {
	source := `def f(items):
    if not items:
        return 0
    total = 0
    for item in items:
        total += item
    return total
`
	body, src := firstFunctionBody(t, source, parser.LangPython)
	if got := Score(body, src, parser.LangPython); got != 3 {
		t.Errorf("if + for = %d, want 3", got)
	}
}

func TestScore_ElifChain(t *testing.T) {
	source := `def classify(n):
    if n < 0:
        return "neg"
    elif n == 0:
        return "zero"
    elif n < 10:
        return "small"
    else:
        return "big"
`
	body, src := firstFunctionBody(t, source, parser.LangPython)
	// if + two elifs; the else is not a branch of its own.
	if got := Score(body, src, parser.LangPython); got != 4 {
		t.Errorf("if/elif/elif/else = %d, want 4", got)
	}
}

func TestScore_PythonBooleanOperators(t *testing.T) {
	source := `def check(a, b, c):
    if a and b or c:
        return True
    return False
`
	body, src := firstFunctionBody(t, source, parser.LangPython)
	// if + "and" + "or".
	if got := Score(body, src, parser.LangPython); got != 4 {
		t.Errorf("if with and/or = %d, want 4", got)
	}
}

func TestScore_PythonExcept(t *testing.T) {
	source := `def load(path):
    try:
        return open(path).read()
    except OSError:
        return ""
    except ValueError:
        return None
`
	body, src := firstFunctionBody(t, source, parser.LangPython)
	// try itself is linear; each except clause branches.
	if got := Score(body, src, parser.LangPython); got != 3 {
		t.Errorf("try with two excepts = %d, want 3", got)
	}
}

func TestScore_JavaScriptLogicalChain(t *testing.T) {
	source := `function valid(a, b, c) {
  if (a && b && c) {
    return true;
  }
  return false;
}
`
	body, src := firstFunctionBody(t, source, parser.LangJavaScript)
	// if + two && operators (chain-counted).
	if got := Score(body, src, parser.LangJavaScript); got != 4 {
		t.Errorf("if with a && b && c = %d, want 4", got)
	}
}

func TestScore_JavaScriptTernaryAndSwitch(t *testing.T) {
	source := `function label(n) {
  const sign = n < 0 ? "neg" : "pos";
  switch (n) {
    case 0:
      return "zero";
    case 1:
      return "one";
    default:
      return sign;
  }
}
`
	body, src := firstFunctionBody(t, source, parser.LangJavaScript)
	// ternary + three switch_case arms (default included).
	if got := Score(body, src, parser.LangJavaScript); got != 5 {
		t.Errorf("ternary + switch = %d, want 5", got)
	}
}

func TestScore_RustMatchArms(t *testing.T) {
	source := `fn describe(n: i32) -> &'static str {
    match n {
        0 => "zero",
        1 => "one",
        _ => "many",
    }
}
`
	body, src := firstFunctionBody(t, source, parser.LangRust)
	// Three match arms; the match itself is not counted separately.
	if got := Score(body, src, parser.LangRust); got != 4 {
		t.Errorf("match with 3 arms = %d, want 4", got)
	}
}

func TestScore_JavaLoopsAndCatch(t *testing.T) {
	source := `class T {
  int sum(int[] items) {
    int total = 0;
    for (int i : items) {
      total += i;
    }
    try {
      return total;
    } catch (RuntimeException e) {
      return 0;
    }
  }
}
`
	body, src := firstFunctionBody(t, source, parser.LangJava)
	// enhanced for + catch clause.
	if got := Score(body, src, parser.LangJava); got != 3 {
		t.Errorf("for-each + catch = %d, want 3", got)
	}
}

func TestScore_CppWhile(t *testing.T) {
	source := `int count(int n) {
    int c = 0;
    while (n > 1) {
        if (n % 2 == 0) {
            n /= 2;
        } else {
            n = 3 * n + 1;
        }
        c++;
    }
    return c;
}
`
	body, src := firstFunctionBody(t, source, parser.LangCpp)
	// while + if.
	if got := Score(body, src, parser.LangCpp); got != 3 {
		t.Errorf("while + if = %d, want 3", got)
	}
}
