// pkg/parcel/alloc.go
package parcel

// 分配器：freelist 首次适配 + 可选的尾部扩展。
//
// 策略（格式没规定，这里是本实现钉死的行为）：
//   - 最小分配粒度是 freeNodeSize (24)。任何发出去的区间将来都要能
//     装下一个 freelist 节点，否则 free 时写不进去。
//   - 只发"精确大小"的区间：空闲区间要么长度正好，要么富余部分
//     >= freeNodeSize 时切下来重新挂回 freelist。差 1..23 字节的区间
//     直接跳过，绝不多发。这样 free(offset, size) 永远和当初分配的
//     大小一致，不需要在对象里记录实际分配长度，也不会漏字节。
//   - 不做相邻空闲区间的合并。

// maxFreeScan 限制一次分配扫描的 freelist 节点数，
// 防止损坏成环的链表把扫描变成死循环。
const maxFreeScan = 1 << 20

// allocSize 把请求长度归一到最小分配粒度
func allocSize(size uint64) uint64 {
	if size < freeNodeSize {
		return freeNodeSize
	}
	return size
}

// nodeAlloc 分配一个至少 size 字节的区间，返回 (offset, 实际长度)。
// 成功返回前 header 一定已经落盘：freelist 指针和 tailptr 必须
// 和文件里实际写掉的东西一致。
func (p *Parcel) nodeAlloc(size uint64) (uint64, uint64, error) {
	want := allocSize(size)

	// 1. 首次适配扫描 freelist
	var prev uint64
	cur := p.header.freehead
	for scan := 0; cur != 0; scan++ {
		if scan >= maxFreeScan {
			return 0, 0, ErrFreelist
		}
		fn, err := readFreeNode(p.file, cur)
		if err != nil {
			return 0, 0, err
		}

		exact := fn.size == want
		splittable := fn.size >= want+freeNodeSize
		if !exact && !splittable {
			prev = cur
			cur = fn.next
			continue
		}

		// 2. 从链表上摘下这个区间
		if prev == 0 {
			p.header.freehead = fn.next
		} else {
			pn, err := readFreeNode(p.file, prev)
			if err != nil {
				return 0, 0, err
			}
			pn.next = fn.next
			if err := writeFreeNode(p.file, prev, pn); err != nil {
				return 0, 0, err
			}
		}
		if p.header.freetail == cur {
			p.header.freetail = prev
		}
		if err := p.header.write(p.file); err != nil {
			return 0, 0, err
		}

		// 3. 富余部分切下来挂回去
		if splittable && !exact {
			if err := p.nodeFree(cur+want, fn.size-want); err != nil {
				return 0, 0, err
			}
		}
		return cur, want, nil
	}

	// 4. freelist 给不出来：尾部扩展
	if p.header.flags&OptTailExtend == 0 {
		return 0, 0, ErrNoFree
	}
	offset := p.header.tailptr
	p.header.tailptr += want
	if err := p.header.write(p.file); err != nil {
		return 0, 0, err
	}
	return offset, want, nil
}

// nodeFree 把 [offset, offset+size) 归还 freelist (追加到尾部)。
// size 必须是当初 nodeAlloc 发出的长度。
func (p *Parcel) nodeFree(offset, size uint64) error {
	size = allocSize(size)

	// 先把新的 freelist 节点写进区间本身
	if err := writeFreeNode(p.file, offset, &freeNode{next: 0, size: size}); err != nil {
		return err
	}

	if p.header.freehead == 0 {
		// 空链表：头尾都指向新节点
		p.header.freehead = offset
		p.header.freetail = offset
	} else {
		// 旧尾节点的 next 指向新节点
		tail, err := readFreeNode(p.file, p.header.freetail)
		if err != nil {
			return err
		}
		tail.next = offset
		if err := writeFreeNode(p.file, p.header.freetail, tail); err != nil {
			return err
		}
		p.header.freetail = offset
	}
	return p.header.write(p.file)
}
