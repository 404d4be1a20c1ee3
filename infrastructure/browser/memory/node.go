// Package memory provides an in-memory DOM that implements the driver
// interfaces. Clicks run scripted handlers and mutations can be deferred by
// a number of page queries, which makes asynchronous rendering reproducible.
package memory

import "strings"

// Node is an element in the in-memory DOM.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Content  string
	Hidden   bool
	Children []*Node

	onClick func(b *Browser)
	clicks  int
	parent  *Node
}

// E - creates a node with the given tag and children
func E(tag string, children ...*Node) *Node {
	n := &Node{Tag: tag, Attrs: map[string]string{}}
	for _, c := range children {
		n.Append(c)
	}
	return n
}

// Append - attaches a child at the end
func (n *Node) Append(child *Node) *Node {
	child.parent = n
	n.Children = append(n.Children, child)
	return n
}

// Attr - sets an attribute
func (n *Node) Attr(name, value string) *Node {
	n.Attrs[name] = value
	return n
}

// ID - sets the id attribute
func (n *Node) ID(id string) *Node {
	return n.Attr("id", id)
}

// Text - sets the node's own text
func (n *Node) Text(s string) *Node {
	n.Content = s
	return n
}

// Hide - marks the node as not displayed
func (n *Node) Hide() *Node {
	n.Hidden = true
	return n
}

// OnClick - sets the handler run when the node is clicked
func (n *Node) OnClick(fn func(b *Browser)) *Node {
	n.onClick = fn
	return n
}

// Remove - detaches the node from its parent
func (n *Node) Remove() {
	if n.parent == nil {
		return
	}
	siblings := n.parent.Children
	for i, c := range siblings {
		if c == n {
			n.parent.Children = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	n.parent = nil
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}

func (n *Node) displayed() bool {
	for p := n; p != nil; p = p.parent {
		if p.Hidden {
			return false
		}
	}
	return true
}

func (n *Node) attachedTo(root *Node) bool {
	for p := n; p != nil; p = p.parent {
		if p == root {
			return true
		}
	}
	return false
}

func (n *Node) renderedText() string {
	if n.Hidden {
		return ""
	}
	if len(n.Children) == 0 {
		return n.Content
	}
	parts := []string{}
	if s := strings.TrimSpace(n.Content); s != "" {
		parts = append(parts, s)
	}
	for _, c := range n.Children {
		if s := c.renderedText(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
